package app

import (
	"net/http"

	"github.com/upb/llm-cascade/cascade"
	"github.com/upb/llm-cascade/config"
	"github.com/upb/llm-cascade/handlers"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Cascade *cascade.Service

	ChatHandler     *handlers.ChatHandler
	ProviderHandler *handlers.ProviderHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(cfg *config.Config, logger *zap.Logger) *Dependencies {
	httpClient := &http.Client{Timeout: cfg.Cascade.RequestTimeout}

	cascadeService := cascade.NewService(
		cfg.Providers.Keys,
		logger,
		cascade.WithHTTPClient(httpClient),
		cascade.WithRetryConfig(cascade.RetryConfig{
			MaxAttempts:    cfg.Cascade.MaxAttempts,
			InitialBackoff: cfg.Cascade.InitialBackoff,
			MaxJitter:      cfg.Cascade.MaxJitter,
		}),
	)

	deps := &Dependencies{
		Config:          cfg,
		Logger:          logger,
		Cascade:         cascadeService,
		ChatHandler:     handlers.NewChatHandler(cascadeService, 0, logger),
		ProviderHandler: handlers.NewProviderHandler(cfg.ConfiguredProviders(), logger),
	}

	logger.Info("dependencies initialized",
		zap.Strings("configured_providers", cfg.ConfiguredProviders()))

	return deps
}
