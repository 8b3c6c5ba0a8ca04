package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"member-tracker-go/pkg/logger"
)

type Config struct {
	HTTPPort       string   `env:"HTTP_PORT" envDefault:"8080"`
	Env            string   `env:"ENV" envDefault:"development"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	DB            DBConfig            `envPrefix:"DB_"`
	Auth          AuthConfig          `envPrefix:"AUTH_"`
	Email         EmailConfig         `envPrefix:"EMAIL_"`
	Jobs          JobsConfig          `envPrefix:"JOBS_"`
	RateLimit     RateLimitConfig     `envPrefix:"RATE_LIMIT_"`
	SemesterCache SemesterCacheConfig `envPrefix:"SEMESTER_CACHE_"`
}

type DBConfig struct {
	DSN             string        `env:"DSN"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD" envDefault:"postgres"`
	Name            string        `env:"NAME" envDefault:"member_tracker"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	TimeZone        string        `env:"TIMEZONE" envDefault:"UTC"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

type AuthConfig struct {
	JWTSecret     string `env:"JWT_SECRET"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"member-tracker"`
	SkipAuth      bool   `env:"SKIP"`
	MockUserEmail string `env:"MOCK_USER_EMAIL" envDefault:"dev@example.edu"`
	MockUserName  string `env:"MOCK_USER_NAME" envDefault:"Dev User"`

	// AdminEmails may manage semesters, which are shared by every
	// organization.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
}

type EmailConfig struct {
	Provider       string `env:"PROVIDER" envDefault:"console"`
	AppName        string `env:"APP_NAME" envDefault:"Member Tracker"`
	From           string `env:"FROM" envDefault:"noreply@localhost"`
	FromName       string `env:"FROM_NAME"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
}

type JobsConfig struct {
	Enabled            bool   `env:"ENABLED" envDefault:"true"`
	Workers            int    `env:"WORKERS" envDefault:"4"`
	SemesterReportSpec string `env:"SEMESTER_REPORT_SPEC" envDefault:"0 8 1 1,6 *"`
	AnnualReportSpec   string `env:"ANNUAL_REPORT_SPEC" envDefault:"0 8 2 1 *"`
	StatusEmailSpec    string `env:"STATUS_EMAIL_SPEC" envDefault:"0 9 * * 1"`
}

type RateLimitConfig struct {
	Enabled        bool          `env:"ENABLED" envDefault:"true"`
	ReportRequests int           `env:"REPORT_REQUESTS" envDefault:"30"`
	ImportRequests int           `env:"IMPORT_REQUESTS" envDefault:"5"`
	Window         time.Duration `env:"WINDOW" envDefault:"1m"`
}

type SemesterCacheConfig struct {
	Size int           `env:"SIZE" envDefault:"64"`
	TTL  time.Duration `env:"TTL" envDefault:"10m"`
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if !cfg.Auth.SkipAuth && cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("AUTH_JWT_SECRET is required unless AUTH_SKIP is set")
	}

	return cfg, nil
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

func (c EmailConfig) HasSMTP() bool {
	return c.SMTPHost != ""
}
