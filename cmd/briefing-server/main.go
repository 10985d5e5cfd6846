package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/neura-briefing/internal/app"
	"github.com/samvad-hq/neura-briefing/internal/config"
	"github.com/samvad-hq/neura-briefing/internal/logger"
	"github.com/samvad-hq/neura-briefing/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "briefing server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("briefing server starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	briefing, err := app.NewBriefing(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize briefing", "error", err.Error())
		return err
	}
	defer briefing.Close()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := server.NewHandler(briefing, briefing.Preferences(), briefing.DefaultProfile(), log)
	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           server.NewRouter(handler, allowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoObj("http server listening", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.InfoObj("briefing server shutting down", "reason", ctx.Err().Error())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// allowedOrigins reads the comma-separated FRONTEND_ORIGINS variable.
func allowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(os.Getenv("FRONTEND_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
