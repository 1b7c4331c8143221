package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// postgres oder sqlite (lokal/Tests)
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"speed"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"speed.db"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`
	// Leer = keine API-Key-Prüfung für Reviewer-Routen
	APISecretKey    string `envconfig:"API_SECRET_KEY"`
	PublicBaseURL   string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	FrontendOrigins string `envconfig:"FRONTEND_ORIGINS"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// Mailjet Send API v3.1; ohne Keys werden Mails nur geloggt
	MailjetBaseURL   string        `envconfig:"MAILJET_BASE_URL" default:"https://api.mailjet.com/v3.1"`
	MailjetAPIKey    string        `envconfig:"MAILJET_API_KEY"`
	MailjetSecretKey string        `envconfig:"MAILJET_SECRET_KEY"`
	MailFromEmail    string        `envconfig:"MAIL_FROM_EMAIL" default:"speed@pricehound.tech"`
	MailFromName     string        `envconfig:"MAIL_FROM_NAME" default:"SPEED"`
	NotifyTimeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"30s"`

	// Unpaywall-API für Open-Access-Links veröffentlichter Artikel
	UnpaywallBaseURL string `envconfig:"UNPAYWALL_BASE_URL" default:"https://api.unpaywall.org/v2"`
	UnpaywallEmail   string `envconfig:"UNPAYWALL_EMAIL"`

	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	ArchiveCronSchedule string `envconfig:"ARCHIVE_CRON_SCHEDULE" default:"0 3 * * *"`
	DigestCronSchedule  string `envconfig:"DIGEST_CRON_SCHEDULE" default:"0 8 * * 1-5"`
	ArchiveKeep         int    `envconfig:"ARCHIVE_KEEP" default:"30"`

	SeedRoles bool `envconfig:"SEED_ROLES" default:"true"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// S3Enabled meldet, ob ein Bucket für Archiv-Snapshots konfiguriert ist.
func (c *Config) S3Enabled() bool {
	return c.S3URL != "" && c.S3Bucket != "" && c.S3Key != "" && c.S3Secret != ""
}

// MailjetEnabled meldet, ob echte Mails über Mailjet verschickt werden.
func (c *Config) MailjetEnabled() bool {
	return c.MailjetAPIKey != "" && c.MailjetSecretKey != ""
}

// AllowedOrigins liefert die CORS-Origins aus FRONTEND_ORIGINS (kommagetrennt).
func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.FrontendOrigins) == "" {
		return []string{"http://localhost:3000"}
	}
	var origins []string
	for _, v := range strings.Split(c.FrontendOrigins, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
