package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level studyassist configuration, corresponding to
// .studyassist.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	BaseURL           string       `yaml:"base_url" koanf:"base_url"`
	APIKey            string       `yaml:"api_key" koanf:"api_key"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	Server ServerConfig `yaml:"server" koanf:"server"`
	Store  StoreConfig  `yaml:"store" koanf:"store"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	MaxCachedIndexes int `yaml:"max_cached_indexes" koanf:"max_cached_indexes"`
	ChunkSize        int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap     int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
