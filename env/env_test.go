package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hennalash/go-client/logger"
)

func TestParseEnvBuffer(t *testing.T) {
	envs := ParseEnvBuffer([]byte("# comment\nHENNALASH_API_URL=https://api.example.fr\n\nQUOTED='single'\nDOUBLE=\"double\"\nNOVALUE\n"))
	require.Len(t, envs, 4)
	assert.Equal(t, EnvLine{Key: "HENNALASH_API_URL", Val: "https://api.example.fr"}, envs[0])
	assert.Equal(t, "single", envs[1].Val)
	assert.Equal(t, "double", envs[2].Val)
	assert.Equal(t, EnvLine{Key: "NOVALUE", Val: ""}, envs[3])
}

func TestParseEnvFileMissing(t *testing.T) {
	envs, err := ParseEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Empty(t, envs)
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENV_TEST_A=from-file\nENV_TEST_B=from-file\n"), 0o600))
	t.Setenv("ENV_TEST_A", "from-env")
	os.Unsetenv("ENV_TEST_B")
	t.Cleanup(func() { os.Unsetenv("ENV_TEST_B") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("ENV_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("ENV_TEST_B"))
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("api-url", "", "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("ping-interval", "", "")
	return cmd
}

func TestFlagOrEnvPrecedence(t *testing.T) {
	cmd := newCmd()
	t.Setenv(EnvBaseURL, "https://env.example.fr")
	assert.Equal(t, "https://env.example.fr", BaseURL(cmd))

	require.NoError(t, cmd.Flags().Set("api-url", "https://flag.example.fr"))
	assert.Equal(t, "https://flag.example.fr", BaseURL(cmd))
}

func TestBaseURLDefault(t *testing.T) {
	os.Unsetenv(EnvBaseURL)
	assert.Equal(t, DefaultBaseURL, BaseURL(newCmd()))
}

func TestDurationOrEnv(t *testing.T) {
	cmd := newCmd()
	os.Unsetenv(EnvPingInterval)
	assert.Equal(t, 45*time.Second, DurationOrEnv(cmd, "ping-interval", EnvPingInterval, 45*time.Second))

	t.Setenv(EnvPingInterval, "1m30s")
	assert.Equal(t, 90*time.Second, DurationOrEnv(cmd, "ping-interval", EnvPingInterval, 45*time.Second))

	t.Setenv(EnvPingInterval, "garbage")
	assert.Equal(t, 45*time.Second, DurationOrEnv(cmd, "ping-interval", EnvPingInterval, 45*time.Second))
}

func TestLogLevelResolution(t *testing.T) {
	cmd := newCmd()
	os.Unsetenv(EnvLogLevel)
	assert.Equal(t, logger.LevelInfo, LogLevel(cmd))
	require.NoError(t, cmd.Flags().Set("log-level", "trace"))
	assert.Equal(t, logger.LevelTrace, LogLevel(cmd))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://cfg.example.fr\nlog_level: debug\nping_interval: 2m\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://cfg.example.fr", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.APIURL)
}

func TestStatePathEnvOverride(t *testing.T) {
	t.Setenv(EnvStatePath, "/tmp/custom-state.bin")
	p, err := StatePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-state.bin", p)
}
