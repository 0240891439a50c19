package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadTelegramDefaults(t *testing.T) {
	t.Setenv("TRANSPORT", "telegram")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Bot.Prefix != "/" {
		t.Fatalf("expected telegram prefix '/', got %q", cfg.Bot.Prefix)
	}
	if cfg.Dialogue.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", cfg.Dialogue.PageSize)
	}
	if cfg.Dialogue.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.Dialogue.Timeout)
	}
	if cfg.Catalog.Source != CatalogSourceCSV {
		t.Fatalf("expected csv source, got %q", cfg.Catalog.Source)
	}
}

func TestLoadIrisUsesBangPrefix(t *testing.T) {
	t.Setenv("TRANSPORT", "iris")
	t.Setenv("TELEGRAM_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Bot.Prefix != "!" {
		t.Fatalf("expected iris prefix '!', got %q", cfg.Bot.Prefix)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Transport: TransportTelegram,
			Telegram:  TelegramConfig{Token: "t"},
			Catalog:   CatalogConfig{Source: CatalogSourceCSV, Path: "cars.csv"},
			Wikimedia: WikimediaConfig{APIURL: "https://example.org/api", FileURL: "https://example.org/f/%s"},
			Dialogue:  DialogueConfig{Timeout: time.Second, PageSize: 10},
			Bot:       BotConfig{Prefix: "/"},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "TELEGRAM_TOKEN"},
		{"unknown transport", func(c *Config) { c.Transport = "discord" }, "TRANSPORT"},
		{"unknown source", func(c *Config) { c.Catalog.Source = "mongo" }, "CATALOG_SOURCE"},
		{"sqlite without path", func(c *Config) { c.Catalog.Source = CatalogSourceSQLite; c.Catalog.Table = "t" }, "SQLITE_PATH"},
		{"file url without placeholder", func(c *Config) { c.Wikimedia.FileURL = "https://example.org/f/" }, "WIKIMEDIA_FILE_URL"},
		{"zero page size", func(c *Config) { c.Dialogue.PageSize = 0 }, "DIALOGUE_PAGE_SIZE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tc.wantErr, err)
			}
		})
	}
}
