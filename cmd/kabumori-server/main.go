package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kfujii/kabumori/internal/app"
	"github.com/kfujii/kabumori/internal/common"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: KABUMORI_CONFIG or kabumori.toml next to the binary)")
	runOnce := flag.Bool("once", false, "run one pipeline pass and exit")
	flag.Parse()

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	if *runOnce {
		if err := a.RunPipeline(context.Background()); err != nil {
			a.Logger.Error().Err(err).Msg("Pipeline run failed")
			a.Close()
			os.Exit(1)
		}
		a.Close()
		return
	}

	if a.Config.Scheduler.Enabled {
		a.StartScheduler()
	} else {
		a.Logger.Warn().Msg("Scheduler disabled; no pipeline runs will occur")
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	a.Logger.Info().Msg("Shutdown signal received")

	a.Close()
	common.PrintShutdownBanner(a.Logger)
}
