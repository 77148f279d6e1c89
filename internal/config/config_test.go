package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"), "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PageSize != defaultPageSize || cfg.SearchDebounce != defaultSearchDebounce || cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
	if cfg.RefreshEvery != 0 {
		t.Fatalf("RefreshEvery = %v, want disabled", cfg.RefreshEvery)
	}
	wantLog, err := ExpandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path := writeFile(t, t.TempDir(), "config.toml", `
api_url = "  https://portal.example.org/api  "
token_file = "  ~/.khidmat/token  "
page_size = 25
search_debounce = "250ms"
request_timeout = "10s"
refresh_every = "1m"
retry_max = 0
log_level = " DEBUG "
log_file = "~/logs/k.log"
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://portal.example.org/api" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if !strings.HasPrefix(cfg.TokenFile, home) {
		t.Fatalf("TokenFile = %q, want it under HOME %q", cfg.TokenFile, home)
	}
	if cfg.PageSize != 25 || cfg.SearchDebounce != 250*time.Millisecond || cfg.RequestTimeout != 10*time.Second || cfg.RefreshEvery != time.Minute {
		t.Fatalf("numeric fields = %#v", cfg)
	}
	if cfg.RetryMax != 0 {
		t.Fatalf("RetryMax = %d, want explicit 0", cfg.RetryMax)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFile != filepath.Join(home, "logs", "k.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
}

func TestLoad_EnvOverridesFileAndDotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "config.toml", "api_url = \"http://file\"\npage_size = 20\n")
	writeFile(t, dir, ".env", "KHIDMAT_API_URL=http://dotenv\nKHIDMAT_TOKEN=from-dotenv\nKHIDMAT_PAGE_SIZE=30\n")
	t.Setenv("KHIDMAT_PAGE_SIZE", "40")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://dotenv" {
		t.Fatalf("APIURL = %q, want .env value", cfg.APIURL)
	}
	if cfg.Token != "from-dotenv" {
		t.Fatalf("Token = %q, want .env value", cfg.Token)
	}
	if cfg.PageSize != 40 {
		t.Fatalf("PageSize = %d, want process env value 40", cfg.PageSize)
	}
}

func TestLoad_ExplicitMissingEnvFileIsError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := Load("", filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for missing explicit env file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	path := writeFile(t, t.TempDir(), "config.toml", "request_timeout = \"soon\"\n")
	if _, err := Load(path, ""); err == nil || !strings.Contains(err.Error(), "request_timeout") {
		t.Fatalf("expected request_timeout error, got %v", err)
	}

	path = writeFile(t, t.TempDir(), "config.toml", "page_size = [")
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv("KHIDMAT_PAGE_SIZE", "many")
	if _, err := Load("", ""); err == nil {
		t.Fatalf("expected env parse error")
	}
}

func TestLoad_PageSizeIsCapped(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("KHIDMAT_PAGE_SIZE", "100000")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PageSize != maxPageSize {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, maxPageSize)
	}
}

func TestResolveToken(t *testing.T) {
	cfg := Config{Token: "inline"}
	if got, _ := cfg.ResolveToken(); got != "inline" {
		t.Fatalf("ResolveToken = %q, want inline", got)
	}

	tokenFile := writeFile(t, t.TempDir(), "token", "  from-file\n")
	cfg = Config{TokenFile: tokenFile}
	got, err := cfg.ResolveToken()
	if err != nil || got != "from-file" {
		t.Fatalf("ResolveToken = %q, %v", got, err)
	}

	cfg = Config{TokenFile: filepath.Join(t.TempDir(), "missing")}
	if _, err := cfg.ResolveToken(); err == nil {
		t.Fatalf("expected error for missing token file")
	}

	if got, err := (Config{}).ResolveToken(); got != "" || err != nil {
		t.Fatalf("empty config ResolveToken = %q, %v", got, err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/x/y")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "x", "y") {
		t.Fatalf("ExpandPath = %q", got)
	}
	if _, err := ExpandPath("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
