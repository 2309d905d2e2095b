package main

import (
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/bot"
	"github.com/ygellis/luach-bot/internal/classifier"
	"github.com/ygellis/luach-bot/internal/extractor"
	"github.com/ygellis/luach-bot/internal/pipeline"
	"github.com/ygellis/luach-bot/internal/schedule"
	"github.com/ygellis/luach-bot/internal/session"
	"github.com/ygellis/luach-bot/internal/storage"
	"github.com/ygellis/luach-bot/pkg/config"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	loc, err := time.LoadLocation(cfg.Pipeline.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err), zap.String("timezone", cfg.Pipeline.Timezone))
	}

	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	contextWindow := time.Duration(cfg.Pipeline.ContextWindowMinutes) * time.Minute
	var sessions session.Store
	if cfg.Redis.UseInMemory {
		logger.Info("Using in-memory session store")
		sessions = session.NewMemoryStore(contextWindow, cfg.Pipeline.DefaultLeadMinutes)
	} else {
		logger.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
		sessions, err = session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			contextWindow, cfg.Pipeline.DefaultLeadMinutes)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	}
	defer sessions.Close()

	var client *openai.Client
	if cfg.OpenAI.APIKey != "" {
		client = openai.NewClient(cfg.OpenAI.APIKey)
	} else {
		logger.Warn("No OpenAI API key; running on the keyword backend and regex extraction only")
	}

	registry := classifier.NewRegistry(classifier.NewKeywordBackend())
	if client != nil {
		for _, model := range cfg.OpenAI.Models {
			registry.Register(classifier.NewOpenAIBackend(client, model,
				cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger))
		}
	}

	tiers := classifier.Tiers{
		Unanimous:         cfg.Classifier.UnanimousConfidence,
		Majority:          cfg.Classifier.MajorityConfidence,
		Solo:              cfg.Classifier.SoloConfidence,
		Split:             cfg.Classifier.SplitConfidence,
		ReminderAccept:    cfg.Classifier.ReminderAccept,
		AdditiveAccept:    cfg.Classifier.AdditiveAccept,
		DestructiveAccept: cfg.Classifier.DestructiveAccept,
		PerBackendTimeout: time.Duration(cfg.Classifier.BackendTimeoutSec) * time.Second,
	}
	ensemble := classifier.NewEnsemble(registry, tiers, logger)

	extractModel := ""
	if len(cfg.OpenAI.Models) > 0 {
		extractModel = cfg.OpenAI.Models[0]
	}
	var chat extractor.ChatCompleter
	if client != nil {
		chat = client
	}
	ext := extractor.New(chat, extractModel,
		time.Duration(cfg.Pipeline.ExtractorTimeoutSec)*time.Second, logger)

	resolver := schedule.NewResolver(time.Duration(cfg.Pipeline.GraceWindowSec) * time.Second)

	p := pipeline.New(ensemble, ext, resolver, sessions, loc,
		time.Duration(cfg.Pipeline.MessageTimeoutSec)*time.Second, logger)

	b, err := bot.New(cfg.Telegram.Token, p, store, sessions, loc, cfg.Pipeline.ListLimit, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
