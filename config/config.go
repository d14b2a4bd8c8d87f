// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-oauth/client"
	"github.com/stacklok/toolhive-oauth/csrf"
	"github.com/stacklok/toolhive-oauth/env"
	"github.com/stacklok/toolhive-oauth/oauth"
	"github.com/stacklok/toolhive-oauth/policy"
	"github.com/stacklok/toolhive-oauth/scope"
)

// Environment variables read by ApplyEnv.
const (
	EnvClientID     = "CLIENT_ID"
	EnvClientSecret = "CLIENT_SECRET"
	EnvRedirectURI  = "REDIRECT_URI"
	EnvPort         = "PORT"
)

// CallbackPath is the path of the redirect URI derived from EnvPort.
const CallbackPath = "/callback"

// ErrInvalidPort is returned when EnvPort is not a usable TCP port.
var ErrInvalidPort = errors.New("invalid port")

// Config is the client configuration file.
type Config struct {
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty" yaml:"redirect_uri,omitempty"`

	Scopes      []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	ForceVerify bool     `json:"force_verify,omitempty" yaml:"force_verify,omitempty"`

	// Endpoints overrides the provider URLs. All four must be given.
	Endpoints *oauth.Endpoints `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`

	CSRF  CSRF  `json:"csrf,omitzero" yaml:"csrf,omitempty"`
	Login Login `json:"login,omitzero" yaml:"login,omitempty"`

	// ValidationCacheTTL enables the token validation cache when positive.
	ValidationCacheTTL time.Duration `json:"validation_cache_ttl,omitempty" yaml:"validation_cache_ttl,omitempty"`

	// Policy is an optional CEL expression evaluated against validated tokens.
	Policy string `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// CSRF bounds the age of state values.
type CSRF struct {
	MaxAge    time.Duration `json:"max_age,omitempty" yaml:"max_age,omitempty"`
	ClockSkew time.Duration `json:"clock_skew,omitempty" yaml:"clock_skew,omitempty"`
}

// Login configures interactive login.
type Login struct {
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// PathIn returns the configuration file location within configHome.
func PathIn(configHome string) string {
	return filepath.Join(configHome, "toolhive-oauth", "config.yaml")
}

// DefaultPath returns the configuration file location under the XDG config home.
func DefaultPath() string {
	return PathIn(xdg.ConfigHome)
}

// Load reads, schema-validates and decodes the YAML file at path. An empty
// path yields an empty Config.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads DefaultPath if it exists and returns an empty Config
// otherwise.
func LoadDefault() (*Config, error) {
	cfg, err := Load(DefaultPath())
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Parse validates data against the configuration schema and decodes it.
func Parse(data []byte) (*Config, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays values from r. EnvRedirectURI wins over EnvPort, which
// derives a loopback redirect URI on CallbackPath.
func (c *Config) ApplyEnv(r env.Reader) error {
	if v := r.Getenv(EnvClientID); v != "" {
		c.ClientID = v
	}
	if v := r.Getenv(EnvClientSecret); v != "" {
		c.ClientSecret = v
	}
	if v := r.Getenv(EnvRedirectURI); v != "" {
		c.RedirectURI = v
		return nil
	}
	if v := r.Getenv(EnvPort); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil || port == 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidPort, EnvPort, v)
		}
		c.RedirectURI = "http://" + net.JoinHostPort("localhost", v) + CallbackPath
	}
	return nil
}

// ClientConfig converts c to a client.Config and validates it.
func (c *Config) ClientConfig() (client.Config, error) {
	cc := client.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       scope.FromStrings(c.Scopes),
		ForceVerify:  c.ForceVerify,
		CSRF: csrf.Config{
			MaxAge:    c.CSRF.MaxAge,
			ClockSkew: c.CSRF.ClockSkew,
		},
	}
	if c.Endpoints != nil {
		cc.Endpoints = *c.Endpoints
	}
	if err := cc.Validate(); err != nil {
		return client.Config{}, err
	}
	return cc, nil
}

// ClientOptions returns the client options implied by c.
func (c *Config) ClientOptions() []client.Option {
	var opts []client.Option
	if c.ValidationCacheTTL > 0 {
		opts = append(opts, client.WithValidationCache(c.ValidationCacheTTL))
	}
	return opts
}

// CompilePolicy compiles the configured policy. It returns nil when none is set.
func (c *Config) CompilePolicy() (*policy.Policy, error) {
	if c.Policy == "" {
		return nil, nil
	}
	return policy.Compile(c.Policy)
}
