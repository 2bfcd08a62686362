package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultScheme                  = "https"
	DefaultPort                    = 443
	DefaultTransportTimeoutSeconds = 30
	DefaultTransportKind           = "rest"
)

type TransportConfig struct {
	Kind                 string `koanf:"kind" mapstructure:"kind"`
	TimeoutSeconds       int    `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
	InsecureSkipVerify   bool   `koanf:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	MaxResponseBodyBytes int64  `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type FreshnessConfig struct {
	ExpiringSoonSeconds       int `koanf:"expiring_soon_seconds" mapstructure:"expiring_soon_seconds"`
	ReauthenticateLeadSeconds int `koanf:"reauthenticate_lead_seconds" mapstructure:"reauthenticate_lead_seconds"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Host        string          `koanf:"host" mapstructure:"host"`
	Scheme      string          `koanf:"scheme" mapstructure:"scheme"`
	Port        int             `koanf:"port" mapstructure:"port"`
	Transport   TransportConfig `koanf:"transport" mapstructure:"transport"`
	Freshness   FreshnessConfig `koanf:"freshness" mapstructure:"freshness"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "fmc",
		Scheme:      DefaultScheme,
		Port:        DefaultPort,
		Transport: TransportConfig{
			Kind:           DefaultTransportKind,
			TimeoutSeconds: DefaultTransportTimeoutSeconds,
		},
		Freshness: FreshnessConfig{
			ExpiringSoonSeconds:       int(DefaultTokenExpiringSoonWindow / time.Second),
			ReauthenticateLeadSeconds: int(DefaultReauthenticateLeadWindow / time.Second),
		},
	}
}

// Validate checks shape only. An empty host is allowed here because a host
// can be supplied per chain; resolving without one fails later.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Scheme)) {
	case "", "http", "https":
	default:
		return fmt.Errorf("core: scheme %q is invalid", c.Scheme)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("core: port %d is invalid", c.Port)
	}
	if c.Transport.TimeoutSeconds < 0 {
		return fmt.Errorf("core: transport.timeout_seconds must not be negative")
	}
	if c.Transport.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: transport.max_response_body_bytes must not be negative")
	}
	return nil
}

func (c Config) TransportTimeout() time.Duration {
	if c.Transport.TimeoutSeconds <= 0 {
		return DefaultTransportTimeoutSeconds * time.Second
	}
	return time.Duration(c.Transport.TimeoutSeconds) * time.Second
}

func (c Config) ExpiringSoonWindow() time.Duration {
	if c.Freshness.ExpiringSoonSeconds <= 0 {
		return DefaultTokenExpiringSoonWindow
	}
	return time.Duration(c.Freshness.ExpiringSoonSeconds) * time.Second
}

func (c Config) ReauthenticateLeadWindow() time.Duration {
	if c.Freshness.ReauthenticateLeadSeconds <= 0 {
		return DefaultReauthenticateLeadWindow
	}
	return time.Duration(c.Freshness.ReauthenticateLeadSeconds) * time.Second
}
