package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/xhad/polisum/pkg/drafter"
	"github.com/xhad/polisum/pkg/fetcher"
	"github.com/xhad/polisum/pkg/llm"
	"github.com/xhad/polisum/pkg/processor"
	"github.com/xhad/polisum/pkg/store"
	"github.com/xhad/polisum/pkg/summarizer"
)

// EnvPrefix prefixes every environment override, e.g. POLISUM_LLM_PROVIDER.
const EnvPrefix = "POLISUM_"

type Config struct {
	LLM        LLMConfig        `yaml:"llm" envPrefix:"LLM_"`
	Summarizer SummarizerConfig `yaml:"summarizer" envPrefix:"SUMMARIZER_"`
	Drafter    DrafterConfig    `yaml:"drafter" envPrefix:"DRAFTER_"`
	Server     ServerConfig     `yaml:"server" envPrefix:"SERVER_"`
	Database   DatabaseConfig   `yaml:"database" envPrefix:"DATABASE_"`
	Fetcher    FetcherConfig    `yaml:"fetcher" envPrefix:"FETCHER_"`
	Log        LogConfig        `yaml:"log" envPrefix:"LOG_"`
}

type LLMConfig struct {
	Provider       string `yaml:"provider" env:"PROVIDER"`
	BaseURL        string `yaml:"base_url" env:"BASE_URL"`
	Model          string `yaml:"model" env:"MODEL"`
	APIKey         string `yaml:"api_key" env:"API_KEY"`
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
}

type SummarizerConfig struct {
	ChunkSize     int    `yaml:"chunk_size" env:"CHUNK_SIZE"`
	MaxInputChars int    `yaml:"max_input_chars" env:"MAX_INPUT_CHARS"`
	MinChunkChars int    `yaml:"min_chunk_chars" env:"MIN_CHUNK_CHARS"`
	MinLength     int    `yaml:"min_length" env:"MIN_LENGTH"`
	MaxLength     int    `yaml:"max_length" env:"MAX_LENGTH"`
	MaxWords      int    `yaml:"max_words" env:"MAX_WORDS"`
	Fallback      string `yaml:"fallback" env:"FALLBACK"`
}

type DrafterConfig struct {
	Mode              string  `yaml:"mode" env:"MODE"`
	MaxSummaryChars   int     `yaml:"max_summary_chars" env:"MAX_SUMMARY_CHARS"`
	Temperature       float64 `yaml:"temperature" env:"TEMPERATURE"`
	TopP              float64 `yaml:"top_p" env:"TOP_P"`
	RepetitionPenalty float64 `yaml:"repetition_penalty" env:"REPETITION_PENALTY"`
	MaxLength         int     `yaml:"max_length" env:"MAX_LENGTH"`
	Seed              uint64  `yaml:"seed" env:"SEED"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" env:"ADDR"`
	StaticDir      string   `yaml:"static_dir" env:"STATIC_DIR"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	MaxUploadMB    int      `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	EnableHistory  bool     `yaml:"enable_history" env:"ENABLE_HISTORY"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url" env:"URL"`
	TableName  string `yaml:"table_name" env:"TABLE_NAME"`
	VectorDim  int    `yaml:"vector_dim" env:"VECTOR_DIM"`
	MaxEntries int    `yaml:"max_entries" env:"MAX_ENTRIES"`
}

type FetcherConfig struct {
	RateLimit         float64       `yaml:"rate_limit" env:"RATE_LIMIT"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	AllowPrivateHosts bool          `yaml:"allow_private_hosts" env:"ALLOW_PRIVATE_HOSTS"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// LoadConfig reads path, or the first default location that exists, over
// the defaults, then applies environment overrides. Values set explicitly to
// zero are kept so that Validate can reject them.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/polisum/config.yaml"),
			"/etc/polisum/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	var config Config
	applyDefaults(&config)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := mergeWithEnv(&config); err != nil {
		return nil, err
	}

	normalize(&config)

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = llm.ProviderExtractive
	}

	if config.Summarizer.ChunkSize == 0 {
		config.Summarizer.ChunkSize = processor.DefaultChunkSize
	}
	if config.Summarizer.MaxInputChars == 0 {
		config.Summarizer.MaxInputChars = processor.DefaultMaxInputChars
	}
	if config.Summarizer.MinChunkChars == 0 {
		config.Summarizer.MinChunkChars = summarizer.DefaultMinChunkChars
	}
	if config.Summarizer.MinLength == 0 {
		config.Summarizer.MinLength = summarizer.DefaultMinLength
	}
	if config.Summarizer.MaxLength == 0 {
		config.Summarizer.MaxLength = summarizer.DefaultMaxLength
	}
	if config.Summarizer.Fallback == "" {
		config.Summarizer.Fallback = summarizer.DefaultFallback
	}

	if config.Drafter.Mode == "" {
		config.Drafter.Mode = drafter.ModeTemplate
	}
	if config.Drafter.MaxSummaryChars == 0 {
		config.Drafter.MaxSummaryChars = 1000
	}
	if config.Drafter.Temperature == 0 {
		config.Drafter.Temperature = 0.7
	}
	if config.Drafter.TopP == 0 {
		config.Drafter.TopP = 0.9
	}
	if config.Drafter.RepetitionPenalty == 0 {
		config.Drafter.RepetitionPenalty = 1.2
	}
	if config.Drafter.MaxLength == 0 {
		config.Drafter.MaxLength = 300
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":5000"
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
	if config.Server.MaxUploadMB == 0 {
		config.Server.MaxUploadMB = 20
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "history"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}
	if config.Database.MaxEntries == 0 {
		config.Database.MaxEntries = store.DefaultMaxEntries
	}

	if config.Fetcher.RateLimit == 0 {
		config.Fetcher.RateLimit = 2.0
	}
	if config.Fetcher.Timeout == 0 {
		config.Fetcher.Timeout = 30 * time.Second
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
}

// normalize lower-cases names and fills the settings that depend on the
// chosen provider.
func normalize(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = llm.ProviderExtractive
	}
	config.LLM.Provider = strings.ToLower(config.LLM.Provider)
	if config.LLM.Provider == llm.ProviderOllama {
		if config.LLM.BaseURL == "" {
			config.LLM.BaseURL = "http://localhost:11434"
		}
		if config.LLM.Model == "" {
			config.LLM.Model = "mistral"
		}
	}

	if config.Drafter.Mode == "" {
		config.Drafter.Mode = drafter.ModeTemplate
	}
	config.Drafter.Mode = strings.ToLower(config.Drafter.Mode)
}

// mergeWithEnv applies OLLAMA_BASE_URL and DATABASE_URL, then any
// POLISUM_* variable, which wins.
func mergeWithEnv(config *Config) error {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	return nil
}

func (c *Config) ModelConfig() llm.ModelConfig {
	return llm.ModelConfig{
		Provider:       c.LLM.Provider,
		Model:          c.LLM.Model,
		EmbeddingModel: c.LLM.EmbeddingModel,
		BaseURL:        c.LLM.BaseURL,
		APIKey:         c.LLM.APIKey,
	}
}

func (c *Config) PipelineConfig() summarizer.PipelineConfig {
	return summarizer.PipelineConfig{
		ChunkSize:     c.Summarizer.ChunkSize,
		MaxInputChars: c.Summarizer.MaxInputChars,
		MinChunkChars: c.Summarizer.MinChunkChars,
		MinLength:     c.Summarizer.MinLength,
		MaxLength:     c.Summarizer.MaxLength,
		MaxWords:      c.Summarizer.MaxWords,
		Fallback:      c.Summarizer.Fallback,
	}
}

func (c *Config) DrafterConfig() drafter.Config {
	return drafter.Config{
		Mode: c.Drafter.Mode,
		Seed: c.Drafter.Seed,
		Generative: drafter.GenerativeConfig{
			MaxSummaryChars:   c.Drafter.MaxSummaryChars,
			Temperature:       c.Drafter.Temperature,
			TopP:              c.Drafter.TopP,
			RepetitionPenalty: c.Drafter.RepetitionPenalty,
			MaxLength:         c.Drafter.MaxLength,
		},
	}
}

func (c *Config) StoreConfig() store.StoreConfig {
	return store.StoreConfig{
		ConnString: c.Database.URL,
		TableName:  c.Database.TableName,
		VectorDim:  c.Database.VectorDim,
		MaxEntries: c.Database.MaxEntries,
	}
}

func (c *Config) FetcherConfig() fetcher.FetcherConfig {
	return fetcher.FetcherConfig{
		RateLimit:         c.Fetcher.RateLimit,
		Timeout:           c.Fetcher.Timeout,
		MaxBytes:          int64(c.Server.MaxUploadMB) << 20,
		AllowPrivateHosts: c.Fetcher.AllowPrivateHosts,
	}
}

// LogLevel parses log.level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
