package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MediSynth-io/contactbook/internal/config"
)

// Config holds the authentication configuration
type Config struct {
	ResetSecret     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
	BcryptCost      int
	// AppDomain prefixes the reset link sent by email.
	AppDomain string
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		ResetTokenTTL:   5 * time.Minute,
		BcryptCost:      bcrypt.DefaultCost,
		AppDomain:       "http://localhost:3000",
	}
}

// NewConfig maps the application config onto the auth settings.
func NewConfig(cfg *config.Config) Config {
	c := DefaultConfig()
	c.ResetSecret = cfg.Auth.ResetSecret
	c.AppDomain = cfg.AppDomain
	if cfg.Auth.AccessTokenTTL > 0 {
		c.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	}
	if cfg.Auth.RefreshTokenTTL > 0 {
		c.RefreshTokenTTL = cfg.Auth.RefreshTokenTTL
	}
	if cfg.Auth.ResetTokenTTL > 0 {
		c.ResetTokenTTL = cfg.Auth.ResetTokenTTL
	}
	if cfg.Auth.BcryptCost > 0 {
		c.BcryptCost = cfg.Auth.BcryptCost
	}
	return c
}
