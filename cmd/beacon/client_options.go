package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/beaconsh/beacon"
	"github.com/beaconsh/beacon/domain/search"
	"github.com/beaconsh/beacon/infrastructure/provider"
	"github.com/beaconsh/beacon/internal/config"
)

// clientOptions returns the beacon.Option slice derived from the shared parts
// of AppConfig: database storage, embedding provider, and text provider.
// Callers append entrypoint-specific options (API keys, worker count, etc.)
// before passing the full slice to beacon.New.
func clientOptions(cfg config.AppConfig) ([]beacon.Option, error) {
	var opts []beacon.Option

	opts = append(opts, storageOptions(cfg)...)

	embOpts, err := embeddingOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding config: %w", err)
	}
	opts = append(opts, embOpts...)

	txtOpts, err := textOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("text config: %w", err)
	}
	opts = append(opts, txtOpts...)

	return opts, nil
}

// storageOptions returns the beacon.Option for the configured database backend.
func storageOptions(cfg config.AppConfig) []beacon.Option {
	dbURL := cfg.DBURL()

	if dbURL != "" && !isSQLite(dbURL) {
		return []beacon.Option{beacon.WithPostgresVectorchord(dbURL)}
	}

	dbPath := cfg.DataDir() + "/beacon.db"
	if dbURL != "" && isSQLite(dbURL) {
		dbPath = strings.TrimPrefix(dbURL, "sqlite:///")
		if dbPath == dbURL {
			dbPath = strings.TrimPrefix(dbURL, "sqlite:")
		}
	}

	return []beacon.Option{beacon.WithSQLite(dbPath)}
}

// embeddingOptions returns a beacon.Option for the embedding provider when the
// embedding endpoint is fully configured, or an empty slice otherwise.
func embeddingOptions(cfg config.AppConfig) ([]beacon.Option, error) {
	endpoint := cfg.EmbeddingEndpoint()
	if endpoint == nil || endpoint.BaseURL() == "" || endpoint.APIKey() == "" {
		return nil, nil
	}

	openaiCfg := provider.OpenAIConfig{
		APIKey:         endpoint.APIKey(),
		BaseURL:        endpoint.BaseURL(),
		EmbeddingModel: endpoint.Model(),
		Timeout:        endpoint.Timeout(),
		MaxRetries:     endpoint.MaxRetries(),
	}
	if cacheDir := cfg.HTTPCacheDir(); cacheDir != "" {
		openaiCfg.HTTPClient = &http.Client{
			Timeout:   endpoint.Timeout(),
			Transport: provider.NewCachingTransport(cacheDir, nil),
		}
	}
	p := provider.NewOpenAIProviderFromConfig(openaiCfg)

	budget, err := search.NewTokenBudget(endpoint.MaxBatchChars())
	if err != nil {
		return nil, fmt.Errorf("max batch chars: %w", err)
	}
	budget = budget.WithMaxBatchSize(endpoint.MaxBatchSize())

	opts := []beacon.Option{
		beacon.WithEmbeddingProvider(p),
		beacon.WithEmbeddingBudget(budget),
		beacon.WithEmbeddingParallelism(endpoint.NumParallelTasks()),
	}

	return opts, nil
}

// textOptions returns a beacon.Option for the text generation provider when the
// enrichment endpoint is fully configured, or an empty slice otherwise.
func textOptions(cfg config.AppConfig) ([]beacon.Option, error) {
	endpoint := cfg.EnrichmentEndpoint()
	if endpoint == nil || endpoint.BaseURL() == "" || endpoint.APIKey() == "" {
		return nil, nil
	}

	txtCfg := provider.OpenAIConfig{
		APIKey:     endpoint.APIKey(),
		BaseURL:    endpoint.BaseURL(),
		ChatModel:  endpoint.Model(),
		Timeout:    endpoint.Timeout(),
		MaxRetries: endpoint.MaxRetries(),
	}
	if cacheDir := cfg.HTTPCacheDir(); cacheDir != "" {
		txtCfg.HTTPClient = &http.Client{
			Timeout:   endpoint.Timeout(),
			Transport: provider.NewCachingTransport(cacheDir, nil),
		}
	}
	p := provider.NewOpenAIProviderFromConfig(txtCfg)

	budget, err := search.NewTokenBudget(endpoint.MaxBatchChars())
	if err != nil {
		return nil, fmt.Errorf("max batch chars: %w", err)
	}
	budget = budget.WithMaxBatchSize(endpoint.MaxBatchSize())

	opts := []beacon.Option{
		beacon.WithTextProvider(p),
		beacon.WithEnrichmentBudget(budget),
		beacon.WithEnrichmentParallelism(endpoint.NumParallelTasks()),
		beacon.WithEnricherParallelism(endpoint.NumParallelTasks()),
	}

	return opts, nil
}

// isSQLite checks if the database URL is for SQLite.
func isSQLite(url string) bool {
	return strings.HasPrefix(url, "sqlite:")
}
