package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8081"
database:
  host: db
  port: 5433
  user: app
  name: tickets
seatmap:
  first_class_rows: 3
auth:
  tokens:
    - token: abc
      user_id: 1
      admin: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, 3, cfg.SeatMap.FirstClassRows)
	assert.Equal(t, 3, cfg.Database.TxAttempts)
	assert.Equal(t, "host=db port=5433 user=app password= dbname=tickets sslmode=disable", cfg.Database.DSN())
	require.Len(t, cfg.Auth.Tokens, 1)
	assert.True(t, cfg.Auth.Tokens[0].Admin)
}

func TestLoadConfig_TokensFromEnv(t *testing.T) {
	path := writeConfig(t, `
auth:
  tokens:
    - token: from-file
      user_id: 1
`)
	t.Setenv(TokensEnv, "t1:10:admin, t2:20")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []TokenConfig{
		{Token: "t1", UserID: 10, Admin: true},
		{Token: "t2", UserID: 20},
	}, cfg.Auth.Tokens)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: ["))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeConfig(t, "database:\n  tx_attempts: 0\n"))
	assert.ErrorContains(t, err, "tx_attempts")
}

func TestParseTokens(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		wantErr bool
		want    []TokenConfig
	}{
		{name: "empty", raw: "", want: nil},
		{name: "user token", raw: "abc:5", want: []TokenConfig{{Token: "abc", UserID: 5}}},
		{name: "admin token", raw: "abc:5:admin", want: []TokenConfig{{Token: "abc", UserID: 5, Admin: true}}},
		{name: "missing user", raw: "abc", wantErr: true},
		{name: "bad user", raw: "abc:x", wantErr: true},
		{name: "bad flag", raw: "abc:1:root", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTokens(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "loud"}.SlogLevel())
}
