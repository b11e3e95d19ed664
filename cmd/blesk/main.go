package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blesk-bot/internal/bot"
	"blesk-bot/internal/config"
	"blesk-bot/internal/platega"
	"blesk-bot/internal/server"
	"blesk-bot/internal/session"
	"blesk-bot/pkg/logger"

	"go.uber.org/zap"
)

// ENTRY POINT

func main() {
	zapLogger, err := logger.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}

	store := newSessionStore(cfg, zapLogger)
	if rs, ok := store.(*session.RedisStore); ok {
		defer rs.Close()
	}

	paymentClient := platega.NewClient(platega.Options{
		BaseURL:     cfg.PlategaBaseURL,
		MerchantID:  cfg.PlategaMerchantID,
		Secret:      cfg.PlategaAPIKey,
		ReturnURL:   cfg.PublicBaseURL + "/success",
		FailedURL:   cfg.PublicBaseURL + "/fail",
		Amount:      cfg.SubscriptionPrice,
		Currency:    cfg.Currency,
		Description: "Spotify Family подписка (1 месяц)",
		Timeout:     cfg.HTTPRequestTimeout,
	}, zapLogger)

	tgBot, err := bot.New(cfg, paymentClient, store, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create bot", zap.Error(err))
	}

	var verifier platega.Verifier = platega.NoopVerifier{}
	if cfg.PlategaWebhookSecret != "" {
		verifier = platega.NewHMACVerifier(cfg.PlategaWebhookSecret)
	} else {
		zapLogger.Warn("Webhook signature verification disabled")
	}

	srv := server.New(cfg.HTTPAddr, tgBot, verifier, zapLogger)
	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Error("HTTP server stopped with error", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}

// newSessionStore picks the configured backend: redis when REDIS_ADDR
// is set, a flat file when SESSIONS_FILE is set, in-memory otherwise.
func newSessionStore(cfg *config.Config, zapLogger *zap.Logger) session.Store {
	switch {
	case cfg.RedisAddr != "":
		zapLogger.Info("Using redis session store",
			zap.String("addr", cfg.RedisAddr))
		return session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	case cfg.SessionsFile != "":
		zapLogger.Info("Using file session store",
			zap.String("path", cfg.SessionsFile))
		return session.NewFileStore(cfg.SessionsFile, zapLogger)
	default:
		zapLogger.Info("Using in-memory session store")
		return session.NewMemoryStore()
	}
}
