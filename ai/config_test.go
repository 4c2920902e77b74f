package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.ChatHost)
	assert.Equal(t, "paraphrase-multilingual-MiniLM-L12-v2", cfg.EmbeddingModel)
	assert.Equal(t, "deepseek-chat", cfg.ChatModel)
	assert.Equal(t, "none", cfg.EmbeddingToken)
	assert.Empty(t, cfg.ChatToken)
	assert.False(t, cfg.ChatEnabled())
	assert.Equal(t, 1.0, cfg.Temperature)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultEmbeddingHost, cfg.EmbeddingHost)
		assert.Equal(t, DefaultChatHost, cfg.ChatHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ChatHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithChatHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.ChatHost)
	})

	t.Run("with credentials and models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("bge-m3"),
			WithChatModel("deepseek-reasoner"),
			WithChatToken("sk-test"),
			WithEmbeddingToken("local"),
			WithTemperature(0.3),
		)

		assert.Equal(t, "bge-m3", cfg.EmbeddingModel)
		assert.Equal(t, "deepseek-reasoner", cfg.ChatModel)
		assert.Equal(t, "sk-test", cfg.ChatToken)
		assert.Equal(t, "local", cfg.EmbeddingToken)
		assert.Equal(t, 0.3, cfg.Temperature)
		assert.True(t, cfg.ChatEnabled())
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name              string
		embeddingHost     string
		chatHost          string
		expectedEmbedding string
		expectedChat      string
	}{
		{
			name:              "already has /v1",
			embeddingHost:     "http://localhost:11434/v1",
			chatHost:          "https://api.deepseek.com/v1",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "https://api.deepseek.com/v1",
		},
		{
			name:              "missing /v1",
			embeddingHost:     "http://localhost:11434",
			chatHost:          "https://api.deepseek.com",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "https://api.deepseek.com/v1",
		},
		{
			name:              "has trailing slash",
			embeddingHost:     "http://localhost:11434/",
			chatHost:          "https://api.deepseek.com/",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "https://api.deepseek.com/v1",
		},
		{
			name:              "empty hosts",
			embeddingHost:     "",
			chatHost:          "",
			expectedEmbedding: "",
			expectedChat:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost: tt.embeddingHost,
				ChatHost:      tt.chatHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedChat, cfg.ChatHost)
			assert.Equal(t, "none", cfg.EmbeddingToken)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EmbeddingHost:  "http://localhost:11434",
			ChatHost:       "https://api.deepseek.com",
			EmbeddingModel: "paraphrase-multilingual-MiniLM-L12-v2",
			ChatModel:      "deepseek-chat",
			Temperature:    1.0,
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()

		require.NoError(t, cfg.Validate())

		// Should also normalize
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "https://api.deepseek.com/v1", cfg.ChatHost)
	})

	t.Run("valid without chat token", func(t *testing.T) {
		cfg := valid()
		cfg.ChatToken = ""

		assert.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing chat host", func(c *Config) { c.ChatHost = "" }, "ChatHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing chat model", func(c *Config) { c.ChatModel = "" }, "ChatModel"},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, "Temperature"},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, "Temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
