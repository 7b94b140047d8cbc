package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration for the service into cfg. It searches for a
// config.yml and a .env file in standard locations, binds environment
// variables, applies defaults, and validates the result.
func Load(serviceName string, cfg *Config, opts ...LoaderOption) error {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	configFile := lc.configFile
	if configFile == "" {
		configFile = findFile(configSearchPaths(serviceName))
	}
	envFile := lc.envFile
	if envFile == "" {
		envFile = findFile(envSearchPaths(serviceName))
	}

	v := viper.New()

	// 1. YAML config first, as the base layer.
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	// 2. .env file, then environment variables on top.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load %s: %v\n", envFile, err)
		}
	}
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for service %s: %w", serviceName, err)
	}

	cfg.ApplyDefaults()
	return cfg.Validate()
}

// loaderConfig holds optional file overrides.
type loaderConfig struct {
	configFile string
	envFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*loaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

func configSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}
}

func envSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf(".env.%s", serviceName),
		".env",
		"../.env",
	}
}

func findFile(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// bindEnvVars maps UPPER_SNAKE environment variables onto nested config keys.
// AUTH_USERNAME binds to auth.username, WHISPER_URL to whisper.url, and so on.
// Only variables whose first segment matches a known section are bound, so
// unrelated environment noise never lands in the config.
func bindEnvVars(v *viper.Viper) {
	sections := map[string]bool{
		"base": true, "server": true, "auth": true, "staging": true,
		"whisper": true, "openai": true, "logging": true, "observability": true,
	}

	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		key := strings.ToLower(pair[0])
		idx := strings.Index(key, "_")
		if idx < 1 || !sections[key[:idx]] {
			continue
		}

		v.Set(key[:idx]+"."+key[idx+1:], pair[1])
	}
}
