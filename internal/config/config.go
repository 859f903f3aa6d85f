package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	GitSHA    string `env:"GIT_SHA" envDefault:"dev"`
	BuildTime string `env:"BUILD_TIME"`

	DB      DBConfig
	Auth    AuthConfig
	Storage StorageConfig
	Mail    MailConfig
	Redis   RedisConfig
	Log     LogConfig

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type DBConfig struct {
	Driver                 string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or sqlite
	User                   string `env:"DB_USER"`
	Password               string `env:"DB_PASSWORD"`
	Host                   string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	Name                   string `env:"DB_NAME"`
	Port                   string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	SQLitePath             string `env:"SQLITE_PATH" envDefault:"marketplace.db"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`
	ResetTTL   time.Duration `env:"AUTH_RESET_TTL" envDefault:"1h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`
	RateLimit  int           `env:"AUTH_RATE_LIMIT" envDefault:"20"`
	RateWindow time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`
}

type StorageConfig struct {
	Backend         string `env:"STORAGE_BACKEND" envDefault:"minio"` // minio, gcs or memory
	Endpoint        string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey       string `env:"MINIO_ACCESS_KEY"`
	SecretKey       string `env:"MINIO_SECRET_KEY"`
	UseSSL          bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	Region          string `env:"MINIO_REGION" envDefault:"us-east-1"`
	ImagesBucket    string `env:"MINIO_BUCKET_IMAGES" envDefault:"staplewise-images"`
	DocumentsBucket string `env:"MINIO_BUCKET_DOCUMENTS" envDefault:"staplewise-documents"`
	PublicBaseURL   string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"http://localhost:9000"`
	LegacyBaseURL   string `env:"STORAGE_LEGACY_BASE_URL"`
	LegacyHost      string `env:"STORAGE_LEGACY_HOST"`

	GCSProjectID       string `env:"GCS_PROJECT_ID"`
	GCSCredentialsJSON string `env:"GCS_CREDENTIALS_JSON"`
	GCSEndpoint        string `env:"GCS_ENDPOINT"`
}

type MailConfig struct {
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	From         string `env:"MAIL_FROM" envDefault:"StapleWise <no-reply@staplewise.com>"`
	ResetURLBase string `env:"RESET_URL_BASE" envDefault:"http://localhost:5173/reset-password"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type LogConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Encoding string `env:"LOG_ENCODING" envDefault:"json"` // json or console
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that depend on each other.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "mysql":
		if c.DB.User == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_USER and DB_NAME are required for mysql"))
		}
		if c.DB.Host == "" && c.DB.InstanceConnectionName == "" {
			errs = append(errs, errors.New("DB_HOST or INSTANCE_CONNECTION_NAME is required for mysql"))
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.ResetTTL <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_TTL and AUTH_RESET_TTL must be positive"))
	}

	switch c.Storage.Backend {
	case "minio":
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for minio"))
		}
	case "gcs", "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if c.Storage.ImagesBucket == "" || c.Storage.DocumentsBucket == "" {
		errs = append(errs, errors.New("bucket names must not be empty"))
	}
	return errors.Join(errs...)
}

func (m MailConfig) SMTPEnabled() bool {
	return m.SMTPHost != ""
}
