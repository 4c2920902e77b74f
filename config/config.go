package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/corpus"
	"github.com/poiesic/lexis/search"
	"github.com/poiesic/lexis/storage"
	redisstore "github.com/poiesic/lexis/storage/redis"
	"github.com/poiesic/lexis/vocab"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "lexis.yaml"

// Session store backends.
const (
	SessionBackendBadger = "badger"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	// RateLimit is the sustained requests per second allowed on model
	// backed routes. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// SplitterConfig selects how the corpus is cut into passages.
type SplitterConfig struct {
	Type         string `yaml:"type"`
	MinLength    int    `yaml:"min_length"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	Language     string `yaml:"language"`
}

// CorpusConfig locates the corpus and configures index builds.
type CorpusConfig struct {
	Path      string         `yaml:"path"`
	Splitter  SplitterConfig `yaml:"splitter"`
	BatchSize int            `yaml:"batch_size"`
	Workers   int            `yaml:"workers"`
	// Attempts is the number of tries per embedding request during a build.
	Attempts   int           `yaml:"attempts"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// SearchConfig holds retrieval defaults for the display and ask flows.
type SearchConfig struct {
	K            int     `yaml:"k"`
	Threshold    float64 `yaml:"threshold"`
	AskK         int     `yaml:"ask_k"`
	AskThreshold float64 `yaml:"ask_threshold"`
}

// AIConfig configures the embedding and chat services.
// Tokens are never read from the file, only from the named variables.
type AIConfig struct {
	EmbeddingHost   string   `yaml:"embedding_host"`
	EmbeddingModel  string   `yaml:"embedding_model"`
	EmbeddingKeyEnv string   `yaml:"embedding_key_env"`
	ChatHost        string   `yaml:"chat_host"`
	ChatModel       string   `yaml:"chat_model"`
	APIKeyEnv       string   `yaml:"api_key_env"`
	Temperature     *float64 `yaml:"temperature"`

	EmbeddingToken string `yaml:"-"`
	ChatToken      string `yaml:"-"`
}

// PersonaConfig shapes the synthesized answers.
type PersonaConfig struct {
	Author       string `yaml:"author"`
	SystemPrompt string `yaml:"system_prompt"`
}

// MinerConfig bounds the input accepted by the miner.
type MinerConfig struct {
	MinChars    int      `yaml:"min_chars"`
	MaxChars    int      `yaml:"max_chars"`
	Temperature *float64 `yaml:"temperature"`
}

// RedisConfig locates a shared session store.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`
	KeyPrefix   string `yaml:"key_prefix"`

	Password string `yaml:"-"`
}

// SessionsConfig selects the session store.
type SessionsConfig struct {
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"`
	TTL     time.Duration `yaml:"ttl"`
	// GCSchedule is a cron expression for store maintenance. Empty disables it.
	GCSchedule string      `yaml:"gc_schedule"`
	Redis      RedisConfig `yaml:"redis"`
}

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Search   SearchConfig   `yaml:"search"`
	AI       AIConfig       `yaml:"ai"`
	Persona  PersonaConfig  `yaml:"persona"`
	Miner    MinerConfig    `yaml:"miner"`
	Sessions SessionsConfig `yaml:"sessions"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path, fills unset fields with defaults and
// resolves secrets from the environment. A .env file in the working
// directory is loaded first when present. A missing config file yields the
// defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "err", err)
	}

	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	cfg.resolveSecrets()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 5
	}

	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = corpus.DefaultPath
	}
	if cfg.Corpus.Splitter.Type == "" {
		cfg.Corpus.Splitter.Type = corpus.SplitterRecursive
	}
	if cfg.Corpus.Splitter.MinLength == 0 {
		cfg.Corpus.Splitter.MinLength = corpus.DefaultMinLength
	}
	if cfg.Corpus.Splitter.ChunkSize == 0 {
		cfg.Corpus.Splitter.ChunkSize = corpus.DefaultChunkSize
	}
	if cfg.Corpus.Splitter.ChunkOverlap == 0 {
		cfg.Corpus.Splitter.ChunkOverlap = corpus.DefaultChunkOverlap
	}
	if cfg.Corpus.Splitter.Language == "" {
		cfg.Corpus.Splitter.Language = "zh"
	}
	if cfg.Corpus.BatchSize == 0 {
		cfg.Corpus.BatchSize = 32
	}
	if cfg.Corpus.Attempts == 0 {
		cfg.Corpus.Attempts = 1
	}
	if cfg.Corpus.RetryDelay == 0 {
		cfg.Corpus.RetryDelay = 500 * time.Millisecond
	}

	if cfg.Search.K == 0 {
		cfg.Search.K = search.DefaultK
	}
	if cfg.Search.Threshold == 0 {
		cfg.Search.Threshold = search.DisplayThreshold
	}
	if cfg.Search.AskK == 0 {
		cfg.Search.AskK = 3
	}
	if cfg.Search.AskThreshold == 0 {
		cfg.Search.AskThreshold = search.SynthesisThreshold
	}

	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = ai.DefaultEmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = ai.DefaultEmbeddingModel
	}
	if cfg.AI.ChatHost == "" {
		cfg.AI.ChatHost = ai.DefaultChatHost
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = ai.DefaultChatModel
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = "DEEPSEEK_API_KEY"
	}
	if cfg.AI.Temperature == nil {
		t := 1.0
		cfg.AI.Temperature = &t
	}

	if cfg.Miner.MinChars == 0 {
		cfg.Miner.MinChars = vocab.DefaultMinChars
	}
	if cfg.Miner.MaxChars == 0 {
		cfg.Miner.MaxChars = vocab.DefaultMaxChars
	}

	if cfg.Sessions.Backend == "" {
		cfg.Sessions.Backend = SessionBackendBadger
	}
	if cfg.Sessions.Path == "" && cfg.Sessions.Backend == SessionBackendBadger {
		cfg.Sessions.Path = "sessions"
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = storage.DefaultSessionTTL
	}
	if cfg.Sessions.Redis.Addr == "" {
		cfg.Sessions.Redis.Addr = "localhost:6379"
	}
	if cfg.Sessions.Redis.KeyPrefix == "" {
		cfg.Sessions.Redis.KeyPrefix = redisstore.DefaultKeyPrefix
	}
}

func (c *Config) resolveSecrets() {
	c.AI.ChatToken = os.Getenv(c.AI.APIKeyEnv)
	if c.AI.EmbeddingKeyEnv != "" {
		c.AI.EmbeddingToken = os.Getenv(c.AI.EmbeddingKeyEnv)
	}
	if c.Sessions.Redis.PasswordEnv != "" {
		c.Sessions.Redis.Password = os.Getenv(c.Sessions.Redis.PasswordEnv)
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config: server.rate_limit must not be negative")
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("config: server.rate_burst must be at least 1")
	}
	if _, err := corpus.NewSplitter(c.SplitterConfig()); err != nil {
		return fmt.Errorf("config: corpus.splitter: %w", err)
	}
	if c.Corpus.BatchSize < 1 {
		return fmt.Errorf("config: corpus.batch_size must be at least 1")
	}
	if c.Corpus.Attempts < 1 {
		return fmt.Errorf("config: corpus.attempts must be at least 1")
	}
	if c.Search.K < 1 || c.Search.AskK < 1 {
		return fmt.Errorf("config: search.k and search.ask_k must be at least 1")
	}
	if c.Search.Threshold < -1 || c.Search.Threshold > 1 || c.Search.AskThreshold < -1 || c.Search.AskThreshold > 1 {
		return fmt.Errorf("config: search thresholds must be within [-1, 1]")
	}
	if c.Miner.MinChars < 1 || c.Miner.MaxChars < c.Miner.MinChars {
		return fmt.Errorf("config: miner.min_chars must be at least 1 and not above miner.max_chars")
	}
	if !slices.Contains([]string{SessionBackendBadger, SessionBackendMemory, SessionBackendRedis}, c.Sessions.Backend) {
		return fmt.Errorf("config: unknown sessions.backend %q", c.Sessions.Backend)
	}
	if c.Sessions.TTL < time.Second {
		return fmt.Errorf("config: sessions.ttl must be at least 1s")
	}
	aiCfg := c.AIConfig()
	return aiCfg.Validate()
}

// SplitterConfig converts the corpus splitter section.
func (c *Config) SplitterConfig() corpus.SplitterConfig {
	return corpus.SplitterConfig{
		Type:         c.Corpus.Splitter.Type,
		MinLength:    c.Corpus.Splitter.MinLength,
		ChunkSize:    c.Corpus.Splitter.ChunkSize,
		ChunkOverlap: c.Corpus.Splitter.ChunkOverlap,
		Language:     c.Corpus.Splitter.Language,
	}
}

// AIConfig converts the ai section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingToken(c.AI.EmbeddingToken),
		ai.WithChatHost(c.AI.ChatHost),
		ai.WithChatModel(c.AI.ChatModel),
		ai.WithChatToken(c.AI.ChatToken),
	}
	if c.AI.Temperature != nil {
		opts = append(opts, ai.WithTemperature(*c.AI.Temperature))
	}
	return ai.NewConfig(opts...)
}
