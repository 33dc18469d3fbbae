// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the davx command configuration from DAVX_
// prefixed environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/gogama/davx"
	"github.com/gogama/davx/internal/logging"
	"github.com/gogama/davx/netpref"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "DAVX"

// Config holds the command configuration. The embedded structs share
// the DAVX_ prefix; logging settings use DAVX_LOG_.
//
// Keys are derived from the field names rather than set with envconfig
// tags, since a tag also makes envconfig fall back to the unprefixed
// variable, and USER is set in most shells.
type Config struct {
	ServerConfig
	TransportConfig
	Log LogConfig
}

// ServerConfig identifies the server and account.
type ServerConfig struct {
	BaseURL  string `split_words:"true"`
	User     string
	Password string
}

// TransportConfig holds HTTP transport configuration.
type TransportConfig struct {
	Timeout        time.Duration `default:"60s"`
	ConnectTimeout time.Duration `split_words:"true" default:"60s"`
	HTTP2          bool          `default:"true"`
	RateLimit      float64       `split_words:"true" default:"0"`
	Insecure       bool          `default:"false"`
	UserAgent      string        `split_words:"true" default:"davx"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `default:"info"`
	Dev   bool   `default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// HTTPDoer returns the transport configuration for NewHTTPDoer, dialing
// with prefs.
func (c *TransportConfig) HTTPDoer(prefs *netpref.Preferences) davx.TransportConfig {
	return davx.TransportConfig{
		Preferences:        prefs,
		ConnectTimeout:     c.ConnectTimeout,
		InsecureSkipVerify: c.Insecure,
		HTTP2:              c.HTTP2,
		RateLimit:          c.RateLimit,
		UserAgent:          c.UserAgent,
	}
}

// Logger returns the logging package configuration.
func (c *LogConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Development = c.Dev
	return cfg
}
