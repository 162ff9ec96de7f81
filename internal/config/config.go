package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "jobwatch"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	StoreFileName   = "jobwatch.json"

	DefaultLimit         = 20
	DefaultScanInterval  = "@every 6h"
	DefaultProvider      = "ollama"
	DefaultOllamaBaseURL = "http://localhost:11434"
)

// Config holds persistent settings. Environment variables override the file.
type Config struct {
	DatabaseURL   string `json:"database_url"`
	StorePath     string `json:"store_path"`
	DefaultLimit  int    `json:"default_limit"`
	ScanInterval  string `json:"scan_interval"`
	UserAgent     string `json:"user_agent"`
	LLMProvider   string `json:"llm_provider"`
	LLMModel      string `json:"llm_model"`
	OllamaBaseURL string `json:"ollama_base_url"`
	LLMAPIKey     string `json:"llm_api_key"`
}

func DefaultConfig() Config {
	return Config{
		DefaultLimit:  DefaultLimit,
		ScanInterval:  DefaultScanInterval,
		LLMProvider:   DefaultProvider,
		OllamaBaseURL: DefaultOllamaBaseURL,
	}
}

// Redacted returns a copy that is safe to print.
func (c Config) Redacted() Config {
	if c.LLMAPIKey != "" {
		c.LLMAPIKey = "********"
	}
	if c.DatabaseURL != "" {
		c.DatabaseURL = redactDSN(c.DatabaseURL)
	}
	return c
}

// ResolvedStorePath returns the JSON store location, defaulting to the
// config directory.
func (c Config) ResolvedStorePath() (string, error) {
	if p := strings.TrimSpace(c.StorePath); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StoreFileName), nil
}

// ConfigDir honours JOBWATCH_CONFIG_DIR before the user config directory.
func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("JOBWATCH_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

func Load() (Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile reads config.json without environment overrides. Used before
// saving so env values are not persisted.
func LoadFile() (Config, error) {
	return loadFile()
}

func loadFile() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DatabaseURL = envString("JOBWATCH_DATABASE_URL", cfg.DatabaseURL)
	cfg.StorePath = envString("JOBWATCH_STORE_PATH", cfg.StorePath)
	cfg.DefaultLimit = envInt("JOBWATCH_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.ScanInterval = envString("JOBWATCH_SCAN_INTERVAL", cfg.ScanInterval)
	cfg.UserAgent = envString("JOBWATCH_USER_AGENT", cfg.UserAgent)
	cfg.LLMProvider = envString("JOBWATCH_LLM_PROVIDER", cfg.LLMProvider)
	cfg.LLMModel = envString("JOBWATCH_LLM_MODEL", cfg.LLMModel)
	cfg.OllamaBaseURL = envString("JOBWATCH_OLLAMA_BASE_URL", cfg.OllamaBaseURL)
	cfg.LLMAPIKey = envString("JOBWATCH_LLM_API_KEY", cfg.LLMAPIKey)
}

// Save writes cfg to config.json, creating the directory when needed.
func Save(cfg Config) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ConfigFileName)
	return path, writeConfig(path, cfg)
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("JOBWATCH_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if user, _, ok := strings.Cut(creds, ":"); ok {
		return dsn[:scheme+3] + user + ":****" + dsn[at:]
	}
	return dsn
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
