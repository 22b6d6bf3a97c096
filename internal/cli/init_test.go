package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		APIBase:        "http://localhost:8000/api",
		HTTPTimeout:    5 * time.Second,
		PerPage:        10,
		DBPath:         filepath.Join(t.TempDir(), "state", "session.db"),
		SearchDebounce: 800 * time.Millisecond,
		LookupCacheTTL: time.Minute,
		LookupCacheMax: 8,
		SyncInterval:   30 * time.Minute,
		ReminderDays:   7,
		LogLevel:       "info",
	}
}

func TestSetupLoggerWritesToOutput(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer

	logger, closer, err := SetupLogger(cfg, &buf)
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	defer closer.Close()

	logger.Info("hello")
	logger.Debug("hidden")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output = %q", buf.String())
	}
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug line written at info level")
	}
}

func TestSetupLoggerAppendsToFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "fintrack.log")
	var buf bytes.Buffer

	logger, closer, err := SetupLogger(cfg, &buf)
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	logger.Warn("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q", data)
	}
	if buf.Len() != 0 {
		t.Errorf("output written despite log file: %q", buf.String())
	}
}

func TestNewAppRestoresSession(t *testing.T) {
	cfg := testConfig(t)
	logger, closer, err := SetupLogger(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	defer closer.Close()
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if err := app.RequireSession(); !errors.Is(err, api.ErrUnauthenticated) {
		t.Errorf("RequireSession = %v, want unauthenticated", err)
	}
	if app.Publisher != nil {
		t.Error("publisher created without AMQP_URL")
	}
	if err := app.Session.Set(ctx, "opaque-token", "me@example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	app.Close()

	app, err = NewApp(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer app.Close()
	if err := app.RequireSession(); err != nil {
		t.Errorf("RequireSession after restore: %v", err)
	}
	if app.Session.Email() != "me@example.com" {
		t.Errorf("email = %q", app.Session.Email())
	}

	opts := app.Options(nil)
	if opts.Locations == nil || opts.Lookups == nil || opts.Publisher != nil {
		t.Errorf("options = %+v", opts)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("FINTRACK_API_BASE", "ftp://example.com")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("expected validation error")
	}

	t.Setenv("FINTRACK_API_BASE", "https://example.com/api")
	t.Setenv("FINTRACK_DB_PATH", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig: %v", err)
	}
	if cfg.APIBase != "https://example.com/api" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
}
