package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lenabot/internal/api"
	"lenabot/internal/bot"
	"lenabot/internal/history"
	"lenabot/internal/llm"
	"lenabot/internal/repository"
	"lenabot/internal/sanitize"
	"lenabot/internal/service"
	"lenabot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	// Lets a process supervisor bring the database up first.
	if cfg.Telegram.StartupDelaySeconds > 0 {
		zapLogger.Info("delaying startup",
			zap.Int("seconds", cfg.Telegram.StartupDelaySeconds))
		time.Sleep(time.Duration(cfg.Telegram.StartupDelaySeconds) * time.Second)
	}

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	feed := api.NewEventFeed()
	svc := service.NewService(
		service.NewQuotaService(repo, feed, zapLogger),
		service.NewReferralService(repo, zapLogger),
		service.NewAdminService(repo, feed, zapLogger),
	)

	sanitizer := sanitize.New(rand.New(rand.NewSource(time.Now().UnixNano())))

	completer := llm.New(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})

	tgAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}

	b := bot.New(tgAPI, bot.Config{
		AdminID:          cfg.Telegram.AdminID,
		UnlimitedChatIDs: cfg.Telegram.UnlimitedChatIDs,
		Persona:          loadPersona(cfg.Telegram.PersonaPath, zapLogger),
		CardNumber:       cfg.Telegram.CardNumber,
		ContactLink:      cfg.Telegram.ContactLink,
		UnlimitedChat:    cfg.Telegram.UnlimitedChatLink,
	}, svc, history.New(), completer, sanitizer, logger.Named("bot"))

	router := gin.New()
	router.Use(gin.Recovery())

	api.NewHealthRoutes(router)

	ops := router.Group("/api/v1")
	api.NewStatsRoutes(ops, repo)
	api.NewEventRoutes(ops, feed)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		zapLogger.Info("Starting ops server", zap.String("addr", addr))
		if err := router.Run(addr); err != nil {
			zapLogger.Fatal("Failed to start ops server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}
	zapLogger.Info("Shutting down")
}

// loadPersona reads the system prompt from disk; the built-in persona is
// the fallback. The behavioral suffix is appended either way.
func loadPersona(path string, log *zap.Logger) string {
	base := bot.DefaultPersona
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("failed to read persona file, using default",
				zap.String("path", path), zap.Error(err))
		} else {
			base = string(data)
		}
	}
	return base + bot.PersonaSuffix
}
