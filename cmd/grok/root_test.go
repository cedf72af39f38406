package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grokrpc/grok-go/runtime/config"
	"github.com/grokrpc/grok-go/runtime/grokerr"
)

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "xai-test")
	t.Setenv(config.EnvModel, "")
	t.Setenv(config.EnvEndpoint, "")
	t.Setenv(config.EnvTimeout, "")

	opts := &rootOptions{model: "grok-4", timeout: 5 * time.Second, debug: true, redisURL: "localhost:6379", tpm: 1000}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "grok-4", cfg.DefaultModel)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "localhost:6379", cfg.RateLimit.RedisURL)
	assert.InDelta(t, 1000, cfg.RateLimit.InitialTPM, 0)
	assert.Equal(t, "grok-4", cfg.RateLimit.Key)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvModel, "")
	t.Setenv(config.EnvEndpoint, "")
	t.Setenv(config.EnvTimeout, "")

	path := filepath.Join(t.TempDir(), "grok.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: xai-file\ndefault_model: grok-3\n"), 0o600))

	cfg, err := (&rootOptions{configPath: path}).loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "grok-3", cfg.DefaultModel)
	assert.Equal(t, "xai-file", cfg.APIKey.Reveal())
}

func TestCommandsRequireKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"key"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, grokerr.ErrAuth)
}

func TestCommandArgs(t *testing.T) {
	cases := [][]string{
		{"chat"},
		{"stream"},
		{"tokenize"},
		{"key", "extra"},
		{"models", "a", "b"},
	}
	for _, args := range cases {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		assert.Error(t, cmd.ExecuteContext(context.Background()), "args %v", args)
	}
}

func TestRedisOptions(t *testing.T) {
	assert.Equal(t, "localhost:6379", redisOptions("localhost:6379").Addr)
	o := redisOptions("redis://:secret@cache:6380/2")
	assert.Equal(t, "cache:6380", o.Addr)
	assert.Equal(t, "secret", o.Password)
	assert.Equal(t, 2, o.DB)
}
