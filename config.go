package goSession

import (
	"errors"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session   SessionConfig
	JWT       JWTConfig
	Lockout   LockoutConfig
	Blacklist BlacklistConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goSession APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix        string
	RefreshTTL         time.Duration
	MaxSessionsPerUser int
	StoreOpTimeout     time.Duration
	// DegradedLatency is the live health-probe latency above which the
	// store is reported degraded.
	DegradedLatency time.Duration
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by goSession APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by goSession APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	Enabled   bool
	Threshold int
	Cooldown  time.Duration
	// Window bounds the rolling failure-counting window. Zero falls back
	// to Cooldown.
	Window time.Duration
}

// BlacklistConfig defines a public type used by goSession APIs.
//
// BlacklistConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BlacklistConfig struct {
	RedisPrefix string
}

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix:        "gs",
			RefreshTTL:         7 * 24 * time.Hour,
			MaxSessionsPerUser: 5,
			StoreOpTimeout:     3 * time.Second,
			DegradedLatency:    100 * time.Millisecond,
		},
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			SigningMethod: "ed25519",
		},
		Lockout: LockoutConfig{
			Enabled:   true,
			Threshold: 5,
			Cooldown:  15 * time.Minute,
		},
		Blacklist: BlacklistConfig{
			RedisPrefix: "gbl",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c.Session.RefreshTTL <= 0 {
		return errors.New("Session.RefreshTTL must be positive")
	}
	if c.Session.MaxSessionsPerUser <= 0 {
		return errors.New("Session.MaxSessionsPerUser must be positive")
	}
	if c.Session.StoreOpTimeout <= 0 {
		return errors.New("Session.StoreOpTimeout must be positive")
	}
	if c.Lockout.Enabled {
		if c.Lockout.Threshold <= 0 {
			return errors.New("Lockout.Threshold must be positive when lockout is enabled")
		}
		if c.Lockout.Cooldown <= 0 {
			return errors.New("Lockout.Cooldown must be positive when lockout is enabled")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
