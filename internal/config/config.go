package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/carfinder-bot-go/internal/constants"
)

const (
	TransportTelegram = "telegram"
	TransportIris     = "iris"

	CatalogSourceCSV      = "csv"
	CatalogSourcePostgres = "postgres"
	CatalogSourceSQLite   = "sqlite"
)

type Config struct {
	Transport string
	Telegram  TelegramConfig
	Iris      IrisConfig
	Catalog   CatalogConfig
	Postgres  PostgresConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Wikimedia WikimediaConfig
	Dialogue  DialogueConfig
	Health    HealthConfig
	Logging   LoggingConfig
	Bot       BotConfig
}

type TelegramConfig struct {
	Token       string
	PollTimeout time.Duration
}

type IrisConfig struct {
	BaseURL string
	WSURL   string
}

type CatalogConfig struct {
	Source string
	Path   string
	Table  string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type WikimediaConfig struct {
	APIURL    string
	FileURL   string
	UserAgent string
	Timeout   time.Duration
}

type DialogueConfig struct {
	Timeout  time.Duration
	PageSize int
}

type HealthConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
	File  string
}

type BotConfig struct {
	Prefix string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	transport := strings.ToLower(getEnv("TRANSPORT", TransportTelegram))

	cfg := &Config{
		Transport: transport,
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_TOKEN", ""),
			PollTimeout: time.Duration(getEnvInt("TELEGRAM_POLL_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Iris: IrisConfig{
			BaseURL: getEnv("IRIS_BASE_URL", "http://localhost:3000"),
			WSURL:   getEnv("IRIS_WS_URL", "ws://localhost:3000/ws"),
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceCSV)),
			Path:   getEnv("CATALOG_PATH", "carapi-opendatafeed-sample.csv"),
			Table:  getEnv("CATALOG_TABLE", "vehicle_trims"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "carfinder"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "carfinder"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "./data/catalog.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Wikimedia: WikimediaConfig{
			APIURL:    getEnv("WIKIMEDIA_API_URL", constants.APIConfig.WikimediaBaseURL),
			FileURL:   getEnv("WIKIMEDIA_FILE_URL", constants.APIConfig.WikimediaFileURL),
			UserAgent: getEnv("WIKIMEDIA_USER_AGENT", constants.APIConfig.DefaultUserAgent),
			Timeout:   constants.APIConfig.WikimediaTimeout,
		},
		Dialogue: DialogueConfig{
			Timeout:  time.Duration(getEnvInt("DIALOGUE_TIMEOUT_SECONDS", int(constants.PaginationConfig.Timeout/time.Second))) * time.Second,
			PageSize: getEnvInt("DIALOGUE_PAGE_SIZE", constants.PaginationConfig.ItemsPerPage),
		},
		Health: HealthConfig{
			Addr: getEnv("HEALTH_ADDR", ":8081"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Bot: BotConfig{
			Prefix: getEnv("BOT_PREFIX", defaultPrefix(transport)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Transport {
	case TransportTelegram:
		if c.Telegram.Token == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is required for the telegram transport")
		}
	case TransportIris:
		if c.Iris.BaseURL == "" {
			return fmt.Errorf("IRIS_BASE_URL is required")
		}
		if c.Iris.WSURL == "" {
			return fmt.Errorf("IRIS_WS_URL is required")
		}
	default:
		return fmt.Errorf("unknown TRANSPORT %q", c.Transport)
	}

	switch c.Catalog.Source {
	case CatalogSourceCSV:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required for the csv catalog source")
		}
	case CatalogSourcePostgres, CatalogSourceSQLite:
		if c.Catalog.Table == "" {
			return fmt.Errorf("CATALOG_TABLE is required for the %s catalog source", c.Catalog.Source)
		}
		if c.Catalog.Source == CatalogSourceSQLite && c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite catalog source")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	if c.Wikimedia.APIURL == "" {
		return fmt.Errorf("WIKIMEDIA_API_URL is required")
	}
	if !strings.Contains(c.Wikimedia.FileURL, "%s") {
		return fmt.Errorf("WIKIMEDIA_FILE_URL must contain a %%s placeholder")
	}
	if c.Dialogue.PageSize <= 0 {
		return fmt.Errorf("DIALOGUE_PAGE_SIZE must be positive")
	}
	if c.Dialogue.Timeout <= 0 {
		return fmt.Errorf("DIALOGUE_TIMEOUT_SECONDS must be positive")
	}
	if strings.TrimSpace(c.Bot.Prefix) == "" {
		return fmt.Errorf("BOT_PREFIX must not be empty")
	}
	return nil
}

func defaultPrefix(transport string) string {
	if transport == TransportIris {
		return "!"
	}
	return "/"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
