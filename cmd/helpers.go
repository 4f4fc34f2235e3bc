package cmd

import (
	"fmt"
	"path/filepath"

	"studyassist/internal/config"
	"studyassist/internal/db"
	"studyassist/internal/docstore"
	"studyassist/internal/embeddings"
	"studyassist/internal/llm"
	"studyassist/internal/logging"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, cfg.BaseURL), nil
	default:
		// Providers without native embeddings fall back to OpenAI.
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (used for embeddings when provider is %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, config.ProviderOllama:
		// Ollama speaks the OpenAI chat API when BaseURL points at it.
		return llm.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// openStore opens the metadata database and document store for cfg.
// The caller must close the returned database.
func openStore(cfg *config.Config) (*db.DB, *docstore.Manager, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "studyassist.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	store, err := docstore.NewManager(embedder, docstore.NewRegistry(database), docstore.Options{
		DataDir:      cfg.DataDir,
		CacheSize:    cfg.Store.MaxCachedIndexes,
		ChunkSize:    cfg.Store.ChunkSize,
		ChunkOverlap: cfg.Store.ChunkOverlap,
	})
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("creating document store: %w", err)
	}
	return database, store, nil
}
