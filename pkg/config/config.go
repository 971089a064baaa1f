package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Sheets        SheetsConfig
	Telegram      TelegramConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	Notifications NotificationsConfig
}

// SheetsConfig locates the spreadsheet backing the lead store.
// Credentials are a service-account blob, either inline JSON or a file path.
type SheetsConfig struct {
	SpreadsheetID    string
	CredentialsFile  string
	CredentialsJSON  string
	SheetName        string
	OperationTimeout time.Duration
}

// TelegramConfig holds the chat-bot credential and destination. Both are
// optional; notifications are silently disabled when either is empty.
type TelegramConfig struct {
	BotToken    string
	ChatID      string
	SendTimeout time.Duration
}

// Enabled reports whether the notifier has everything it needs to send.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	LockEnabled bool
	LockTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// NotificationsConfig tunes the async dispatch queue.
type NotificationsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Sheets = SheetsConfig{
		SpreadsheetID:    v.GetString("GOOGLE_SHEET_ID"),
		CredentialsFile:  v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),
		CredentialsJSON:  v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		SheetName:        v.GetString("GOOGLE_SHEET_NAME"),
		OperationTimeout: parseDuration(v.GetString("SHEETS_TIMEOUT"), 10*time.Second),
	}

	cfg.Telegram = TelegramConfig{
		BotToken:    v.GetString("TELEGRAM_BOT_TOKEN"),
		ChatID:      v.GetString("TELEGRAM_CHAT_ID"),
		SendTimeout: parseDuration(v.GetString("TELEGRAM_TIMEOUT"), 5*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		LockEnabled: v.GetBool("ENABLE_REDIS_LOCK"),
		LockTTL:     parseDuration(v.GetString("REDIS_LOCK_TTL"), 15*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Notifications = NotificationsConfig{
		Workers:    v.GetInt("NOTIFY_WORKERS"),
		BufferSize: v.GetInt("NOTIFY_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFY_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), 2*time.Second),
	}

	return cfg, nil
}

// Validate enforces the required startup surface. The process must refuse
// to start without a spreadsheet id and service-account credentials.
func (c *Config) Validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("config: GOOGLE_SHEET_ID is required")
	}
	if c.Sheets.CredentialsFile == "" && c.Sheets.CredentialsJSON == "" {
		return fmt.Errorf("config: one of GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON is required")
	}
	if c.Env == EnvProduction && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("config: ALLOWED_ORIGINS must name the front-end origin in production")
	}
	if c.Redis.LockEnabled && c.Redis.Host == "" {
		return fmt.Errorf("config: ENABLE_REDIS_LOCK requires REDIS_HOST")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)

	v.SetDefault("GOOGLE_SHEET_ID", "")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "service_account.json")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	v.SetDefault("GOOGLE_SHEET_NAME", "Sheet1")
	v.SetDefault("SHEETS_TIMEOUT", "10s")

	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", "")
	v.SetDefault("TELEGRAM_TIMEOUT", "5s")

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_REDIS_LOCK", false)
	v.SetDefault("REDIS_LOCK_TTL", "15s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("NOTIFY_WORKERS", 1)
	v.SetDefault("NOTIFY_BUFFER_SIZE", 16)
	v.SetDefault("NOTIFY_MAX_RETRIES", 2)
	v.SetDefault("NOTIFY_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
