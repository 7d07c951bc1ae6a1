package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go-jobposting-collector/internal/config"
	"go-jobposting-collector/internal/database"
	"go-jobposting-collector/internal/logging"
	"go-jobposting-collector/internal/server"
	"go-jobposting-collector/internal/telegram"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Configuration file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("❌ Invalid configuration: %v", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		stdlog.Fatalf("❌ %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo database.Repository
	if cfg.DatabaseURL != "" {
		pg, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("❌ Failed to connect to the database")
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("❌ Failed to migrate the database")
		}
		log.Info("✅ Connected to PostgreSQL")
		repo = pg
	} else {
		log.Warn("⚠️ DATABASE_URL not set, records are kept in memory only")
		repo = database.NewMemoryRepository()
	}

	var notifier server.Notifier
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.WithError(err).Warn("⚠️ Telegram disabled")
		} else {
			log.Info("🤖 Telegram Bot initialized.")
			notifier = bot
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(repo, notifier, server.Options{
		PublicBaseURL:  cfg.Server.PublicBaseURL,
		RequestTimeout: cfg.RequestTimeout,
	}, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("⚠️ Graceful shutdown failed")
		}
	}()

	log.WithField("port", cfg.Server.Port).Info("🚀 Server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("❌ Failed to start server")
		return
	}
	log.Info("🏁 Server stopped.")
}
