// Package bootstrap builds the conversation stack shared by the serve and
// chat commands from a validated configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/pkg/chatclient"
	"github.com/papercomputeco/visorx/pkg/config"
	"github.com/papercomputeco/visorx/pkg/conversation"
	"github.com/papercomputeco/visorx/pkg/i18n"
	"github.com/papercomputeco/visorx/pkg/imageenc"
	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/llm/gemini"
	"github.com/papercomputeco/visorx/pkg/llm/mock"
	"github.com/papercomputeco/visorx/pkg/metrics"
)

// LoadConfig reads the configuration file (if any) and the environment,
// then validates the result.
func LoadConfig(path string, override func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewProvider returns the offline echo provider in mock mode and the Gemini
// provider otherwise.
func NewProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	if cfg.UseMock {
		return mock.New(), nil
	}

	p, err := gemini.New(ctx, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}
	return p, nil
}

// NewController wires provider, encoder, localizer and metrics into an
// unstarted controller. reg may be nil to skip metrics.
func NewController(ctx context.Context, cfg config.Config, reg prometheus.Registerer, logger *zap.Logger) (*conversation.Controller, error) {
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var rec *metrics.Recorder
	if reg != nil {
		rec, err = metrics.NewRecorder(reg)
		if err != nil {
			return nil, fmt.Errorf("could not register metrics: %w", err)
		}
	}

	printer := i18n.NewPrinter(cfg.Locale)
	client := chatclient.New(provider, cfg.Model, printer.Sprintf(i18n.EmptyInput), logger)

	logger.Info("conversation configured",
		zap.String("model", cfg.Model),
		zap.String("locale", printer.Tag().String()),
		zap.Bool("mock", cfg.UseMock),
	)

	return conversation.New(client, imageenc.NewEncoder(cfg.MaxImageBytes), conversation.Options{
		Printer: printer,
		Metrics: rec,
		Logger:  logger,
	}), nil
}
