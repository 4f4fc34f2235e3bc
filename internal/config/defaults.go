package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		DataDir:           "data",
		Server: ServerConfig{
			Port:     8000,
			AllowAll: true,
		},
		Store: StoreConfig{
			MaxCachedIndexes: 10,
			ChunkSize:        1500,
			ChunkOverlap:     200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
