package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/financeiro-pro/reconcile-backend/internal/cli"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/config"
)

func main() {
	_ = godotenv.Load()

	flags := cli.ParseServeFlags()

	var cfg *config.Config
	if flags.ConfigFile != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigFile)
	} else {
		cfg = config.LoadOrEnv()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
