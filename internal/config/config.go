package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort    int    `mapstructure:"api_port"`
	AppDomain  string `mapstructure:"app_domain"`
	CORSOrigin string `mapstructure:"cors_origin"`

	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DatabaseConfig selects the persistence backend. Driver is one of
// "mongo", "sqlite", "postgres" or "memory".
type DatabaseConfig struct {
	Driver     string        `mapstructure:"driver"`
	URI        string        `mapstructure:"uri"`
	Name       string        `mapstructure:"name"`
	DSN        string        `mapstructure:"dsn"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type AuthConfig struct {
	ResetSecret            string        `mapstructure:"reset_secret"`
	AccessTokenTTL         time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL        time.Duration `mapstructure:"refresh_token_ttl"`
	ResetTokenTTL          time.Duration `mapstructure:"reset_token_ttl"`
	BcryptCost             int           `mapstructure:"bcrypt_cost"`
	SessionCleanupInterval time.Duration `mapstructure:"session_cleanup_interval"`
}

type StorageConfig struct {
	Remote        bool     `mapstructure:"remote"`
	UploadDir     string   `mapstructure:"upload_dir"`
	TempDir       string   `mapstructure:"temp_dir"`
	MaxUploadSize int64    `mapstructure:"max_upload_size"`
	S3            S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	KeyPrefix       string `mapstructure:"key_prefix"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LoadConfig loads the configuration from file and environment variables.
// An empty path reads the environment only. Nested keys map to env vars
// with dots replaced by underscores, e.g. SMTP_HOST.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the combinations the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("api_port must be between 1 and 65535, got %d", c.APIPort))
	}
	if c.Auth.ResetSecret == "" {
		errs = append(errs, errors.New("auth.reset_secret is required"))
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Auth.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("auth token lifetimes must be positive"))
	}

	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" {
			errs = append(errs, errors.New("database.uri is required for the mongo driver"))
		}
	case "sqlite", "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for the %s driver", c.Database.Driver))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	if c.Storage.Remote && c.Storage.S3.Bucket == "" {
		errs = append(errs, errors.New("storage.s3.bucket is required when storage.remote is enabled"))
	}
	if c.Storage.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("storage.max_upload_size must be positive"))
	}
	return errors.Join(errs...)
}
