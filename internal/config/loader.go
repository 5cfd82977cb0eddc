package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/imh0ng/open-machina/internal/types"
)

// Environment fallbacks for every judge setting. File values win; these
// fill gaps so a bare environment can still configure the judge.
var envBindings = map[string]string{
	"judge.provider":        "MACHINA_JUDGE_PROVIDER",
	"judge.model":           "MACHINA_JUDGE_MODEL",
	"judge.auth_provider":   "MACHINA_JUDGE_AUTH_PROVIDER",
	"judge.api_url":         "MACHINA_JUDGE_API_URL",
	"judge.api_key":         "MACHINA_JUDGE_API_KEY",
	"judge.auth_store_path": "MACHINA_AUTH_STORE",
	"logging.level":         "MACHINA_LOG_LEVEL",
}

// Comma-separated policy lists from environment, applied only when the file
// leaves the list empty.
var envListBindings = map[string]string{
	"allow":    "MACHINA_JUDGE_ALLOW",
	"deny":     "MACHINA_JUDGE_DENY",
	"fallback": "MACHINA_JUDGE_FALLBACK",
}

// Load reads configuration from the given YAML file. ${VAR} references in
// string values are interpolated from the environment before validation.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	return finish(v)
}

// LoadWithDefaults loads configuration from path, falling back to defaults
// plus environment bindings when the file does not exist.
func LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		v := viper.New()
		bindEnv(v)
		return finish(v)
	}
	return Load(path)
}

func bindEnv(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("judge.provider", defaults.Judge.Provider)
	v.SetDefault("judge.auth_provider", defaults.Judge.AuthProvider)
	v.SetDefault("logging.level", defaults.Logging.Level)

	for key, env := range envBindings {
		// Errors only occur for empty inputs, which cannot happen here.
		_ = v.BindEnv(key, env)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	applyEnvLists(&cfg)
	interpolate(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvLists fills empty policy lists from their comma-separated
// environment fallbacks.
func applyEnvLists(cfg *Config) {
	for key, env := range envListBindings {
		raw := strings.TrimSpace(os.Getenv(env))
		if raw == "" {
			continue
		}
		items := splitList(raw)

		switch key {
		case "allow":
			if len(cfg.Judge.Allow) == 0 {
				cfg.Judge.Allow = items
			}
		case "deny":
			if len(cfg.Judge.Deny) == 0 {
				cfg.Judge.Deny = items
			}
		case "fallback":
			if len(cfg.Judge.Fallback) == 0 {
				cfg.Judge.Fallback = items
			}
		}
	}
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// envVarPattern matches ${VAR_NAME} references in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate replaces ${VAR} references with environment values in the
// string fields operators commonly template.
func interpolate(cfg *Config) {
	cfg.Judge.APIKey = interpolateString(cfg.Judge.APIKey)
	cfg.Judge.APIURL = interpolateString(cfg.Judge.APIURL)
	cfg.Judge.AuthStorePath = interpolateString(cfg.Judge.AuthStorePath)
}

func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}
