package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aryanrajsinha8010/chesslearning/internal/bootstrap"
	appcfg "github.com/aryanrajsinha8010/chesslearning/internal/config"
	"github.com/aryanrajsinha8010/chesslearning/internal/obslog"
	"github.com/aryanrajsinha8010/chesslearning/internal/server"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap error", zap.Error(err))
	}
	defer deps.Close()

	deps.Manager.Start(ctx)

	srv := server.New(deps.Manager, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	cancel()
	if err := srv.Shutdown(); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
}
