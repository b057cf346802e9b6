package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"engagerag/internal/app"
	"engagerag/internal/config"
	"engagerag/internal/history"
	"engagerag/internal/logger"
	"engagerag/internal/server"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/engagerag/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := logger.New(cfg.Log)

	a, err := app.Build(cfg, lg, nil)
	if err != nil {
		lg.WithError(err).Fatal("startup failed")
	}
	defer a.Close()

	hist, err := history.New(cfg.History)
	if err != nil {
		lg.WithError(err).Fatal("history store init failed")
	}
	defer hist.Close()

	// warm up so the first chat does not pay for the index build
	go func() {
		if err := a.Engine.EnsureReady(context.Background()); err != nil {
			lg.WithError(err).Warn("warm-up failed, will retry on first query")
		}
	}()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.NewRouter(server.Deps{
			Log:         lg,
			Engine:      a.Engine,
			History:     hist,
			CORSOrigins: cfg.Server.CORSOrigins,
			RatePerSec:  cfg.Server.RatePerSec,
			Burst:       cfg.Server.Burst,
			Version:     version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.WithError(err).Error("forced shutdown")
	}
}
