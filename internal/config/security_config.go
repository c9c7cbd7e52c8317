package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// SecurityConfig represents the complete security configuration
type SecurityConfig struct {
	Tokens    TokenConfig     `toml:"tokens"`
	Passwords PasswordConfig  `toml:"passwords"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Links     LinkConfig      `toml:"links"`
}

// TokenConfig contains token lifetime settings
type TokenConfig struct {
	AccessTTLMinutes       int `toml:"access_ttl_minutes"`
	RefreshTTLHours        int `toml:"refresh_ttl_hours"`
	SupportSessionTTLHours int `toml:"support_session_ttl_hours"`
}

// PasswordConfig contains hashing and policy settings
type PasswordConfig struct {
	BcryptCost int `toml:"bcrypt_cost"`
	MinLength  int `toml:"min_length"`
}

// RateLimitConfig contains sign-in throttling settings
type RateLimitConfig struct {
	LoginAttemptLimit         int `toml:"login_attempt_limit"`
	LoginAttemptWindowMinutes int `toml:"login_attempt_window_minutes"`
}

// LinkConfig contains base URLs embedded into outbound emails
type LinkConfig struct {
	PasswordResetBaseURL     string `toml:"password_reset_base_url"`
	EmailVerificationBaseURL string `toml:"email_verification_base_url"`
}

// LoadSecurityConfig loads configuration from a TOML file
func LoadSecurityConfig(filename string) (*SecurityConfig, error) {
	config := &SecurityConfig{}
	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	config.applyDefaults()
	return config, nil
}

// DefaultSecurityConfig returns the configuration used when no file is present.
func DefaultSecurityConfig() *SecurityConfig {
	config := &SecurityConfig{}
	config.applyDefaults()
	return config
}

func (c *SecurityConfig) applyDefaults() {
	if c.Tokens.AccessTTLMinutes <= 0 {
		c.Tokens.AccessTTLMinutes = 15
	}
	if c.Tokens.RefreshTTLHours <= 0 {
		c.Tokens.RefreshTTLHours = 24 * 30
	}
	if c.Tokens.SupportSessionTTLHours <= 0 {
		c.Tokens.SupportSessionTTLHours = 8
	}
	if c.Passwords.BcryptCost <= 0 {
		c.Passwords.BcryptCost = 12
	}
	if c.Passwords.MinLength <= 0 {
		c.Passwords.MinLength = 8
	}
	if c.RateLimit.LoginAttemptLimit <= 0 {
		c.RateLimit.LoginAttemptLimit = 10
	}
	if c.RateLimit.LoginAttemptWindowMinutes <= 0 {
		c.RateLimit.LoginAttemptWindowMinutes = 15
	}
}

func (c *SecurityConfig) AccessTTL() time.Duration {
	return time.Duration(c.Tokens.AccessTTLMinutes) * time.Minute
}

func (c *SecurityConfig) RefreshTTL() time.Duration {
	return time.Duration(c.Tokens.RefreshTTLHours) * time.Hour
}

func (c *SecurityConfig) SupportSessionTTL() time.Duration {
	return time.Duration(c.Tokens.SupportSessionTTLHours) * time.Hour
}

func (c *SecurityConfig) LoginAttemptWindow() time.Duration {
	return time.Duration(c.RateLimit.LoginAttemptWindowMinutes) * time.Minute
}
