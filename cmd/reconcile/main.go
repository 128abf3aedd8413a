package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/financeiro-pro/reconcile-backend/internal/application/recon"
	"github.com/financeiro-pro/reconcile-backend/internal/cli"
	"github.com/financeiro-pro/reconcile-backend/internal/export"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/config"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/logging"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/storage"
)

func main() {
	_ = godotenv.Load()

	flags := cli.ParseReconcileFlags()
	if flags.Statement == "" || flags.Benner == "" {
		fmt.Fprintln(os.Stderr, "both -statement and -benner are required")
		os.Exit(2)
	}

	var cfg *config.Config
	if flags.ConfigFile != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigFile)
	} else {
		cfg = config.LoadOrEnv()
	}
	if flags.Tolerance != "" {
		cfg.Matching.ValueTolerance = flags.Tolerance
	}
	if flags.Threshold >= 0 {
		cfg.Matching.SimilarityThreshold = flags.Threshold
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cli.PrintHeader(flags.DryRun)

	orchestrator := recon.NewOrchestrator(store, cfg.Matching.EngineConfig(), cfg.Matching.DowngradePolicy(), logger)

	opts := flags.ToRunOptions()
	opts.Progress = func(done, total int) {
		if total > 0 && done%50 == 0 {
			fmt.Printf("\r%d/%d documents", done, total)
		}
		if done == total {
			fmt.Print("\r")
		}
	}

	summary, err := orchestrator.Run(opts)
	if err != nil {
		logger.Error("Reconciliation failed", "error", err)
		os.Exit(1)
	}

	cli.PrintSummary(summary)

	if flags.ExportPath != "" {
		if err := export.Write(flags.ExportPath, summary); err != nil {
			logger.Error("Export failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("\nReport written to %s\n", flags.ExportPath)
	}
}
