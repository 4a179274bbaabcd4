package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	ServerPort string

	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration

	// VisibilityPolicy selects how tasks are scoped to a user: "team" or "label".
	VisibilityPolicy string
	CompletedColumn  string

	BaseURL      string
	LogoURL      string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	RedisURL      string
	BoardCacheTTL time.Duration

	MigrateOnStart bool
	Debug          bool
}

var defaults = map[string]any{
	"DB_HOST":           "localhost",
	"DB_PORT":           "5431",
	"DB_USER":           "kanban_user",
	"DB_PASSWORD":       "kanban_pass",
	"DB_NAME":           "kanban_db",
	"DB_SSLMODE":        "disable",
	"SERVER_PORT":       "8080",
	"JWT_SECRET":        "supersecretkey",
	"JWT_ACCESS_TTL":    "1h",
	"JWT_REFRESH_TTL":   "168h",
	"VISIBILITY_POLICY": "team",
	"COMPLETED_COLUMN":  "Completed",
	"BASE_URL":          "http://localhost:3000",
	"LOGO_URL":          "",
	"SMTP_HOST":         "",
	"SMTP_PORT":         "587",
	"SMTP_USERNAME":     "",
	"SMTP_PASSWORD":     "",
	"MAIL_FROM":         "kanban@localhost",
	"REDIS_URL":         "",
	"BOARD_CACHE_TTL":   "5m",
	"MIGRATE_ON_START":  true,
	"DEBUG":             false,
}

// Load reads .env, then the optional CONFIG_FILE (yaml), then the environment.
// Environment variables win over file values.
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			log.WithError(err).Warnf("⚠️  Could not read config file %s, ignoring it", path)
		}
	}

	return &Config{
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBUser:           v.GetString("DB_USER"),
		DBPassword:       v.GetString("DB_PASSWORD"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSLMODE"),
		ServerPort:       v.GetString("SERVER_PORT"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTAccessTTL:     v.GetDuration("JWT_ACCESS_TTL"),
		JWTRefreshTTL:    v.GetDuration("JWT_REFRESH_TTL"),
		VisibilityPolicy: v.GetString("VISIBILITY_POLICY"),
		CompletedColumn:  v.GetString("COMPLETED_COLUMN"),
		BaseURL:          v.GetString("BASE_URL"),
		LogoURL:          v.GetString("LOGO_URL"),
		SMTPHost:         v.GetString("SMTP_HOST"),
		SMTPPort:         v.GetString("SMTP_PORT"),
		SMTPUsername:     v.GetString("SMTP_USERNAME"),
		SMTPPassword:     v.GetString("SMTP_PASSWORD"),
		MailFrom:         v.GetString("MAIL_FROM"),
		RedisURL:         v.GetString("REDIS_URL"),
		BoardCacheTTL:    v.GetDuration("BOARD_CACHE_TTL"),
		MigrateOnStart:   v.GetBool("MIGRATE_ON_START"),
		Debug:            v.GetBool("DEBUG"),
	}
}

// DSN is the gorm/pgx connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// MigrationURL is the golang-migrate pgx5 URL for the same database.
func (c *Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}
