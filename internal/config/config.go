package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything khidmat reads at startup.
type Config struct {
	APIURL         string
	Token          string
	TokenFile      string
	PageSize       int
	RefineWindow   int
	SearchDebounce time.Duration
	RequestTimeout time.Duration
	RefreshEvery   time.Duration // zero disables list auto-refresh
	SessionEvery   time.Duration
	RetryMax       int
	LogLevel       string
	LogFile        string
}

const (
	defaultConfigPath     = "~/.config/khidmat/config.toml"
	defaultEnvFile        = ".env"
	defaultAPIURL         = "http://127.0.0.1:8000/api"
	defaultLogFile        = "~/.local/state/khidmat/khidmat.log"
	defaultLogLevel       = "info"
	defaultPageSize       = 10
	defaultRefineWindow   = 100
	defaultSearchDebounce = 500 * time.Millisecond
	defaultRequestTimeout = 30 * time.Second
	defaultSessionEvery   = 5 * time.Minute
	defaultRetryMax       = 3
	maxPageSize           = 500

	envPrefix = "KHIDMAT_"
)

// Default returns the configuration used when no file or environment is set.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		PageSize:       defaultPageSize,
		RefineWindow:   defaultRefineWindow,
		SearchDebounce: defaultSearchDebounce,
		RequestTimeout: defaultRequestTimeout,
		SessionEvery:   defaultSessionEvery,
		RetryMax:       defaultRetryMax,
		LogLevel:       defaultLogLevel,
		LogFile:        mustExpand(defaultLogFile),
	}
}

// raw mirrors config.toml. Durations are strings such as "500ms" or "30s".
type raw struct {
	APIURL         string `toml:"api_url"`
	Token          string `toml:"token"`
	TokenFile      string `toml:"token_file"`
	PageSize       int    `toml:"page_size"`
	RefineWindow   int    `toml:"refine_window"`
	SearchDebounce string `toml:"search_debounce"`
	RequestTimeout string `toml:"request_timeout"`
	RefreshEvery   string `toml:"refresh_every"`
	SessionEvery   string `toml:"session_refresh"`
	RetryMax       *int   `toml:"retry_max"`
	LogLevel       string `toml:"log_level"`
	LogFile        string `toml:"log_file"`
}

// Load reads the TOML config at path (default ~/.config/khidmat/config.toml),
// then overlays KHIDMAT_* variables from envFile (default ./.env) and the
// process environment, which wins. Missing files are not an error.
func Load(path, envFile string) (Config, error) {
	resolved, err := resolvePath(path, defaultConfigPath)
	if err != nil {
		return Config{}, err
	}

	var r raw
	bytes, err := readOptional(resolved)
	if err != nil {
		return Config{}, err
	}
	if len(bytes) > 0 {
		if err := toml.Unmarshal(bytes, &r); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	env, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}
	for key, value := range lookupProcessEnv() {
		env[key] = value
	}
	if err := overlayEnv(&r, env); err != nil {
		return Config{}, err
	}

	return build(r)
}

func build(r raw) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(r.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.Token = strings.TrimSpace(r.Token)
	if v := strings.TrimSpace(r.TokenFile); v != "" {
		cfg.TokenFile = mustExpand(v)
	}
	if r.PageSize > 0 {
		cfg.PageSize = min(r.PageSize, maxPageSize)
	}
	if r.RefineWindow > 0 {
		cfg.RefineWindow = r.RefineWindow
	}
	if r.RetryMax != nil {
		cfg.RetryMax = *r.RetryMax
	}
	if v := strings.ToLower(strings.TrimSpace(r.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(r.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	durations := []struct {
		key  string
		raw  string
		dest *time.Duration
	}{
		{"search_debounce", r.SearchDebounce, &cfg.SearchDebounce},
		{"request_timeout", r.RequestTimeout, &cfg.RequestTimeout},
		{"refresh_every", r.RefreshEvery, &cfg.RefreshEvery},
		{"session_refresh", r.SessionEvery, &cfg.SessionEvery},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil || parsed < 0 {
			return Config{}, fmt.Errorf("parse %s %q: invalid duration", d.key, d.raw)
		}
		*d.dest = parsed
	}
	return cfg, nil
}

// ResolveToken returns the bearer token, reading TokenFile when Token is empty.
func (c Config) ResolveToken() (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}
	if c.TokenFile == "" {
		return "", nil
	}
	bytes, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(bytes)), nil
}

func overlayEnv(r *raw, env map[string]string) error {
	str := map[string]*string{
		"API_URL":         &r.APIURL,
		"TOKEN":           &r.Token,
		"TOKEN_FILE":      &r.TokenFile,
		"SEARCH_DEBOUNCE": &r.SearchDebounce,
		"REQUEST_TIMEOUT": &r.RequestTimeout,
		"REFRESH_EVERY":   &r.RefreshEvery,
		"SESSION_REFRESH": &r.SessionEvery,
		"LOG_LEVEL":       &r.LogLevel,
		"LOG_FILE":        &r.LogFile,
	}
	for key, dest := range str {
		if v, ok := env[envPrefix+key]; ok && strings.TrimSpace(v) != "" {
			*dest = v
		}
	}

	ints := map[string]*int{
		"PAGE_SIZE":     &r.PageSize,
		"REFINE_WINDOW": &r.RefineWindow,
	}
	for key, dest := range ints {
		v, ok := env[envPrefix+key]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s%s: %w", envPrefix, key, err)
		}
		*dest = n
	}
	if v, ok := env[envPrefix+"RETRY_MAX"]; ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %sRETRY_MAX: %w", envPrefix, err)
		}
		r.RetryMax = &n
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultEnvFile
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return env, nil
}

func lookupProcessEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, envPrefix) {
			out[key] = value
		}
	}
	return out
}

func readOptional(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return bytes, nil
}

func resolvePath(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(fallback)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
