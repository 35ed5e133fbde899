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

// 標準出力はソルバーとのプロトコルに使うため、ログは標準エラーに出す
func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	config.LoadEnv()
	cfg := config.Load()

	answer, err := tetris.LoadAnswer(cfg.AnswerFile)
	if err != nil {
		logger.Printf("[Interactor] failed to load answer file: %v", err)
		os.Exit(tetris.ExitCodePE)
	}

	modeName := cfg.Mode
	target := answer.Target
	var kinds []string
	gameMode, err := config.LoadGameMode(cfg.ConfigFile)
	if err != nil {
		logger.Printf("[Interactor] %v", err)
		os.Exit(tetris.ExitCodePE)
	}
	if gameMode != nil {
		if gameMode.Mode != "" {
			modeName = gameMode.Mode
		}
		if gameMode.TargetScore != nil {
			target = *gameMode.TargetScore
		}
		kinds = gameMode.Kinds
	}

	mode, err := tetris.ParseMode(modeName)
	if err != nil {
		logger.Printf("[Interactor] %v", err)
		os.Exit(tetris.ExitCodePE)
	}
	enabled, err := tetris.KindsFromStrings(kinds)
	if err == nil {
		err = mode.CheckKinds(enabled)
	}
	if err != nil {
		logger.Printf("[Interactor] %v", err)
		os.Exit(tetris.ExitCodePE)
	}

	var gameLog *tetris.GameLog
	if cfg.GameLog != "" {
		gameLog, err = tetris.OpenGameLog(cfg.GameLog)
		if err != nil {
			logger.Printf("[Interactor] failed to open game log: %v", err)
			os.Exit(tetris.ExitCodePE)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	session := tetris.NewSession(tetris.SessionConfig{
		Target:  target,
		Seed:    answer.Seed,
		Mode:    mode,
		Kinds:   enabled,
		GameLog: gameLog,
		Logger:  logger,
		Debug:   cfg.Debug,
	})
	outcome := session.Play(ctx, os.Stdin, os.Stdout)
	stop()

	if err := gameLog.Close(); err != nil {
		logger.Printf("[Interactor] failed to close game log: %v", err)
	}
	os.Exit(outcome.Status.ExitCode())
}
