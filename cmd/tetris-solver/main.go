package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/services/tetris"
)

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	config.LoadEnv()
	cfg := config.Load()

	mode, err := tetris.ParseMode(cfg.Mode)
	if err != nil {
		logger.Fatalf("[Solver] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	planner := tetris.NewPlanner(mode, logger, cfg.Debug)
	if err := planner.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Fatalf("[Solver] %v", err)
	}
}
