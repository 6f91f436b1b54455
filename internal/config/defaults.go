package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal, even when no config file mentions it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_port", 3000)
	v.SetDefault("app_domain", "http://localhost:3000")
	v.SetDefault("cors_origin", "http://localhost:3000")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "contactbook")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_retries", 5)
	v.SetDefault("database.retry_delay", 2*time.Second)

	v.SetDefault("auth.reset_secret", "")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 30*24*time.Hour)
	v.SetDefault("auth.reset_token_ttl", 5*time.Minute)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.session_cleanup_interval", time.Hour)

	v.SetDefault("storage.remote", false)
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.temp_dir", "temp")
	v.SetDefault("storage.max_upload_size", int64(5<<20))
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.public_base_url", "")
	v.SetDefault("storage.s3.key_prefix", "contacts")

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
}
