package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	c, err := Load(env(nil), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, c.LogLevel)
	require.Equal(t, DefaultListen, c.Listen)
	require.GreaterOrEqual(t, c.Concurrency, 1)
}

func TestLoadPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	content := "INPUTSEQ_LOG_LEVEL=debug\nINPUTSEQ_LISTEN=127.0.0.1:9000\nINPUTSEQ_CONCURRENCY=3\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	c, err := Load(env(nil), file)
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, c.LogLevel)
	require.Equal(t, "127.0.0.1:9000", c.Listen)
	require.Equal(t, 3, c.Concurrency)

	c, err = Load(env(map[string]string{EnvConcurrency: "7", EnvLogLevel: "warn"}), file)
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, c.LogLevel)
	require.Equal(t, "127.0.0.1:9000", c.Listen)
	require.Equal(t, 7, c.Concurrency)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		values map[string]string
	}{
		{name: "level", values: map[string]string{EnvLogLevel: "loud"}},
		{name: "concurrency text", values: map[string]string{EnvConcurrency: "many"}},
		{name: "concurrency zero", values: map[string]string{EnvConcurrency: "0"}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(env(testCase.values))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
