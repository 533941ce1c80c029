package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/linkdeck/linkdeck/internal/agent"
	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewAgentLogger("linkdeck-agent")
	cfg, err := config.GetAgentConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	app, err := agent.NewApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init agent app error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	// Headless bootstrap: credentials are taken from the environment on the
	// first run, later runs reuse the persisted session token.
	if login := os.Getenv("AGENT_LOGIN"); login != "" {
		if err = app.Login(ctx, login, os.Getenv("AGENT_PASSWORD")); err != nil {
			log.Fatal().Err(err).Msg("agent login error")
		}
	}

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("agent run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
