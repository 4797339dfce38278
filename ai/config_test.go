package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://embed.internal:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
	)

	assert.Equal(t, "http://embed.internal:9100", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
}

func TestNormalizeAppendsV1(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare host", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already canonical", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
		})
	}
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	err := (&Config{EmbeddingModel: "m"}).Validate()
	assert.ErrorContains(t, err, "EmbeddingHost")

	err = (&Config{EmbeddingHost: "http://h/v1"}).Validate()
	assert.ErrorContains(t, err, "EmbeddingModel")
}

func TestValidateNormalizesFirst(t *testing.T) {
	cfg := &Config{EmbeddingHost: "http://h", EmbeddingModel: "m"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://h/v1", cfg.EmbeddingHost)
}
