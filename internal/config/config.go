// Package config loads service settings from the environment and an optional
// YAML file using Viper. Values are read once at startup.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keys. Each binds to the upper-cased environment variable of the
// same name unless noted in envAliases.
const (
	KeyPort            = "port"
	KeyStoreBackend    = "store_backend"
	KeyMongoURI        = "mongo_uri"
	KeyMongoDatabase   = "mongo_database"
	KeyMongoCollection = "mongo_collection"
	KeySQLitePath      = "sqlite_path"
	KeyLLMProvider     = "llm_provider"
	KeyLLMAPIKey       = "llm_api_key"
	KeyLLMModel        = "llm_model"
	KeyLLMBaseURL      = "llm_base_url"
	KeyLLMTimeout      = "llm_timeout"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyCORSOrigins     = "cors_origins"
)

// Storage backends.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

var envAliases = map[string][]string{
	KeyMongoURI: {"MONGO_URI", "MONGODB_URI"},
}

// providerKeyEnv is the fallback credential variable per provider, used when
// LLM_API_KEY is unset.
var providerKeyEnv = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"openai": "OPENAI_API_KEY",
}

type Config struct {
	Port string

	StoreBackend    string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	SQLitePath      string

	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string
	LLMTimeout  time.Duration

	LogLevel    string
	LogFormat   string
	CORSOrigins []string
}

// New returns a Viper instance with defaults and environment bindings. A
// non-empty configFile is read as YAML; a missing file is an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(KeyPort, "5000")
	v.SetDefault(KeyStoreBackend, BackendMongo)
	v.SetDefault(KeyMongoDatabase, "autonotes")
	v.SetDefault(KeyMongoCollection, "notes")
	v.SetDefault(KeySQLitePath, "autonotes.db")
	v.SetDefault(KeyLLMProvider, "gemini")
	v.SetDefault(KeyLLMTimeout, "30s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCORSOrigins, []string{"*"})

	for _, key := range []string{
		KeyPort, KeyStoreBackend, KeyMongoURI, KeyMongoDatabase, KeyMongoCollection,
		KeySQLitePath, KeyLLMProvider, KeyLLMAPIKey, KeyLLMModel, KeyLLMBaseURL,
		KeyLLMTimeout, KeyLogLevel, KeyLogFormat, KeyCORSOrigins,
	} {
		envs, ok := envAliases[key]
		if !ok {
			envs = []string{strings.ToUpper(key)}
		}
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	for provider, env := range providerKeyEnv {
		if err := v.BindEnv(provider+"_api_key", env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

// Load reads the settings out of v and checks the enumerated ones.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString(KeyPort),
		StoreBackend:    strings.ToLower(v.GetString(KeyStoreBackend)),
		MongoURI:        v.GetString(KeyMongoURI),
		MongoDatabase:   v.GetString(KeyMongoDatabase),
		MongoCollection: v.GetString(KeyMongoCollection),
		SQLitePath:      v.GetString(KeySQLitePath),
		LLMProvider:     strings.ToLower(v.GetString(KeyLLMProvider)),
		LLMAPIKey:       v.GetString(KeyLLMAPIKey),
		LLMModel:        v.GetString(KeyLLMModel),
		LLMBaseURL:      v.GetString(KeyLLMBaseURL),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		CORSOrigins:     splitList(v.GetStringSlice(KeyCORSOrigins)),
	}

	var errs []error

	timeout, err := parseTimeout(v.GetString(KeyLLMTimeout))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLLMTimeout, err))
	}
	cfg.LLMTimeout = timeout

	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = v.GetString(cfg.LLMProvider + "_api_key")
	}

	switch cfg.StoreBackend {
	case BackendMongo, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q (want %s or %s)", KeyStoreBackend, cfg.StoreBackend, BackendMongo, BackendSQLite))
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%s: unknown format %q (want text or json)", KeyLogFormat, cfg.LogFormat))
	}
	if err == nil && cfg.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %s", KeyLLMTimeout, cfg.LLMTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseTimeout reads a Go duration ("45s", "1m"). A bare integer is taken as
// seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use e.g. 30s or 1m)", raw)
	}
	return d, nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
