package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/i18n"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, schemarpc.DecodeOpt{OnDuplicateKey: schemarpc.Error, MaxDepth: 64, MaxBytes: 1 << 20}, cfg.Decode)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemarpc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: warn
  format: json
decode:
  duplicate_keys: warn
  max_depth: 8
`), 0o644))
	t.Setenv("SCHEMARPC_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, schemarpc.Warn, cfg.Decode.OnDuplicateKey)
	assert.Equal(t, 8, cfg.Decode.MaxDepth)
}

func TestInvalidValues(t *testing.T) {
	for key, val := range map[string]string{
		"SCHEMARPC_LOG_LEVEL":             "loud",
		"SCHEMARPC_LOG_FORMAT":            "xml",
		"SCHEMARPC_I18N_LANGUAGE":         "fr",
		"SCHEMARPC_DECODE_DUPLICATE_KEYS": "maybe",
		"SCHEMARPC_DECODE_MAX_DEPTH":      "-1",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	defer i18n.SetLanguage("en")
	l := logrus.New()
	cfg := &Config{LogLevel: logrus.DebugLevel, LogFormat: "json", Language: "ja"}
	cfg.Apply(l)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
	assert.Equal(t, "必須項目です", i18n.T(schemarpc.CodeRequired, nil))
	assert.Same(t, l, cfg.Decode.Logger)
}
