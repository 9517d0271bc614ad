package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setops/psigate/internal/server/psi"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, psi.RevealElements, cfg.PSI.Reveal)
	assert.Equal(t, psi.ContainerRaw, cfg.PSI.Container)
	assert.Equal(t, 1e-9, cfg.PSI.FalsePositiveRate)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("PSIGATE_ADDR", "127.0.0.1:9000")
	t.Setenv("PSIGATE_DB", "/tmp/test.db")
	t.Setenv("SERVER_SET_PATH", "/tmp/items.txt")
	t.Setenv("PSI_ENGINE_CMD", "/usr/local/bin/psi-helper")
	t.Setenv("PSI_REVEAL", "size")
	t.Setenv("PSI_CONTAINER", "probabilistic")
	t.Setenv("PSI_FPR", "0.001")
	t.Setenv("PSIGATE_TOKEN_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, "/tmp/items.txt", cfg.ServerSetPath)
	assert.Equal(t, "/usr/local/bin/psi-helper", cfg.EngineCommand)
	assert.Equal(t, psi.RevealSize, cfg.PSI.Reveal)
	assert.Equal(t, psi.ContainerProbabilistic, cfg.PSI.Container)
	assert.Equal(t, 0.001, cfg.PSI.FalsePositiveRate)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad fpr", key: "PSI_FPR", value: "not-a-float"},
		{name: "negative fpr", key: "PSI_FPR", value: "-0.5"},
		{name: "unknown reveal", key: "PSI_REVEAL", value: "everything"},
		{name: "unknown container", key: "PSI_CONTAINER", value: "cuckoo"},
		{name: "bad ttl", key: "PSIGATE_TOKEN_TTL", value: "yesterday"},
		{name: "zero ttl", key: "PSIGATE_TOKEN_TTL", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
