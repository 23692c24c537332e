// Package env resolves configuration from flags, environment variables,
// .env files and the optional YAML config file, in that order of
// precedence.
package env

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/hennalash/go-client/logger"
)

// Environment variables understood by the SDK and CLI.
const (
	EnvBaseURL      = "HENNALASH_API_URL"
	EnvLogLevel     = "HENNALASH_LOG_LEVEL"
	EnvPingInterval = "HENNALASH_PING_INTERVAL"
	EnvStatePath    = "HENNALASH_STATE_PATH"
)

// DefaultBaseURL is the hosted backend used when no override is set.
const DefaultBaseURL = "https://hennalash-api.onrender.com"

// EnvLine is a single key/value from an environment file.
type EnvLine struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

func dequote(s string) string {
	v := s
	if strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") {
		v = strings.TrimLeft(v, "'")
		v = strings.TrimRight(v, "'")
	} else if strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = strings.TrimLeft(v, `"`)
		v = strings.TrimRight(v, `"`)
	}
	return v
}

// ProcessEnvLine processes an environment variable line and returns an
// EnvLine struct with the key and value set.
func ProcessEnvLine(env string) EnvLine {
	tok := strings.SplitN(env, "=", 2)
	if len(tok) < 2 {
		return EnvLine{Key: env, Val: ""}
	}
	return EnvLine{Key: tok[0], Val: dequote(tok[1])}
}

// ParseEnvBuffer parses an environment buffer and returns a list of EnvLine
// structs. Blank lines and # comments are skipped.
func ParseEnvBuffer(buf []byte) []EnvLine {
	var envs []EnvLine
	for _, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		env := ProcessEnvLine(line)
		if env.Key != "" {
			envs = append(envs, env)
		}
	}
	return envs
}

// ParseEnvFile parses an environment file. A missing file yields an empty
// list, not an error.
func ParseEnvFile(filename string) ([]EnvLine, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return []EnvLine{}, nil
	}
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseEnvBuffer(buf), nil
}

// LoadEnvFile parses filename and applies each entry to the process
// environment without overriding variables that are already set.
func LoadEnvFile(filename string) error {
	envs, err := ParseEnvFile(filename)
	if err != nil {
		return err
	}
	for _, el := range envs {
		if _, ok := os.LookupEnv(el.Key); !ok {
			os.Setenv(el.Key, el.Val)
		}
	}
	return nil
}

// FlagOrEnv will try and get a flag from the cobra.Command and if not found,
// look it up in the environment and fallback to defaultValue if none found.
func FlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue string) string {
	flagValue, _ := cmd.Flags().GetString(flagName)
	if flagValue != "" {
		return flagValue
	}
	if val, ok := os.LookupEnv(envName); ok {
		return val
	}
	return defaultValue
}

// DurationOrEnv resolves a duration the same way as FlagOrEnv, accepting
// extended forms like "1m30s" or "2h". Unparseable values fall back to
// defaultValue.
func DurationOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue time.Duration) time.Duration {
	raw := FlagOrEnv(cmd, flagName, envName, "")
	if raw == "" {
		return defaultValue
	}
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

// BaseURL resolves the backend base URL: --api-url flag, then
// HENNALASH_API_URL, then the hosted default.
func BaseURL(cmd *cobra.Command) string {
	return FlagOrEnv(cmd, "api-url", EnvBaseURL, DefaultBaseURL)
}

// LogLevel resolves the log level from the --log-level flag or
// HENNALASH_LOG_LEVEL, defaulting to info.
func LogLevel(cmd *cobra.Command) logger.LogLevel {
	return logger.ParseLevel(FlagOrEnv(cmd, "log-level", EnvLogLevel, "info"))
}

// NewLogger returns a console logger at the resolved level.
func NewLogger(cmd *cobra.Command) logger.Logger {
	return logger.NewConsoleLogger(LogLevel(cmd))
}

// Config is the optional YAML config file
// (~/.config/hennalash/config.yaml). Flags and environment variables win
// over it.
type Config struct {
	APIURL       string `yaml:"api_url"`
	LogLevel     string `yaml:"log_level"`
	PingInterval string `yaml:"ping_interval"`
	StatePath    string `yaml:"state_path"`
}

// LoadConfig reads the YAML config at path. A missing file yields the zero
// Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultConfigPath is where LoadConfig looks when --config is not given.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hennalash", "config.yaml"), nil
}

// StatePath resolves where the durable session state lives:
// HENNALASH_STATE_PATH, then the user config dir.
func StatePath() (string, error) {
	if p := os.Getenv(EnvStatePath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hennalash", "state.bin"), nil
}
