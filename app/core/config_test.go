package core

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoadBaseConfig(t *testing.T) {
	raw := `
addr = ":8080"

[log]
level = "warn"

[postgres]
dsn = "postgres://localhost:5432/askbase?sslmode=disable"

[redis]
addr = "127.0.0.1:6379"
db = 1

[ai]
token = "sk-test"
chat_model = "gpt-4o-mini"
embedding_model = "text-embedding-3-large"
max_input_tokens = 8192
retrieve_piece_tokens = 500

[security]
jwt_secret = "secret"

[quota]
max_requests_per_day = 50
max_tokens_per_day = 100000
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg := MustLoadBaseConfig(path)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, slog.LevelWarn, cfg.Log.SlogLevel())
	assert.Equal(t, "postgres://localhost:5432/askbase?sslmode=disable", cfg.Postgres.FormatDSN())
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, 8192, cfg.AI.MaxInputTokens)
	assert.Equal(t, 500, cfg.AI.RetrievePieceTokens)
	assert.Equal(t, int64(50), cfg.Quota.MaxRequestsPerDay)
}

func TestConfigInstallDefaults(t *testing.T) {
	var ai AIConfig
	ai.Install()
	assert.Equal(t, DEFAULT_MAX_INPUT_TOKENS, ai.MaxInputTokens)
	assert.Equal(t, DEFAULT_RETRIEVE_PIECE_TOKENS, ai.RetrievePieceTokens)

	var quota QuotaConfig
	quota.Install()
	assert.Equal(t, int64(DEFAULT_MAX_REQUESTS_PER_DAY), quota.MaxRequestsPerDay)
	assert.Equal(t, DEFAULT_MAX_TOKENS_PER_DAY, quota.MaxTokensPerDay)
}

func TestLogSlogLevelDefault(t *testing.T) {
	l := Log{Level: "unknown"}
	assert.Equal(t, slog.LevelDebug, l.SlogLevel())
}
