package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"beliefshift/internal/archive"
	"beliefshift/internal/interview/conductor"
	"beliefshift/internal/interview/config"
	"beliefshift/internal/interview/handler"
	"beliefshift/internal/interview/repository/convstore"
	"beliefshift/internal/interview/repository/profilestore"
	"beliefshift/internal/interview/server"
	"beliefshift/internal/llmclient"
)

type App struct {
	server *server.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Dependencies
	profiles := profilestore.NewFromEnv(filepath.Join("tmp", "profiles.json"))
	convs := convstore.NewFromEnv(filepath.Join("tmp", "conversations"), convstore.Options{
		CacheSize: cfg.StateCacheSize,
		CacheTTL:  cfg.StateCacheTTL,
	})

	llm, err := newLLMClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build llm client: %w", err)
	}

	var archiver conductor.Archiver
	if cfg.Archive.Enabled {
		store, err := archive.New(archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			log.Printf("archive disabled: %v", err)
		} else {
			archiver = store
		}
	}

	cond := conductor.New(profiles, convs, llm, archiver, nil, conductor.Options{
		ChatDuration:      cfg.ChatDuration,
		MaxSummaryBullets: cfg.MaxSummaryBullets,
		StageThresholds:   cfg.StageThresholds,
		Redirects:         cfg.Redirects,
		OpeningTemplates:  cfg.OpeningTemplates,
		LLMCallTimeout:    cfg.LLM.CallTimeout,
	})

	watch := handler.NewWatchHub()
	chatHandler := handler.NewChatHandler(cond, watch)

	// Routing & Server
	mux := server.NewMux(chatHandler)
	srv := server.New(cfg.Port, mux)

	return &App{server: srv}, nil
}

func newLLMClient(cfg *config.Config) (llmclient.Client, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return llmclient.NewGeminiClient(context.Background(), cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	case "stub":
		return llmclient.NewStubClient(), nil
	default:
		return llmclient.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Temperature, cfg.LLM.MaxTokens), nil
	}
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
