// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-oauth/client"
	"github.com/stacklok/toolhive-oauth/config"
	"github.com/stacklok/toolhive-oauth/env"
	"github.com/stacklok/toolhive-oauth/logging"
	"github.com/stacklok/toolhive-oauth/metrics"
	"github.com/stacklok/toolhive-oauth/oauth"
	"github.com/stacklok/toolhive-oauth/tokenstore"
)

const defaultTokenKey = "default"

// app holds state shared by every subcommand. Fields set before Execute are
// kept, which is how tests inject collaborators.
type app struct {
	configPath      string
	envFile         string
	logLevel        string
	logFormat       string
	storePath       string
	tokenKey        string
	metricsTextfile string
	discoverIssuer  string

	env        env.Reader
	httpClient *http.Client
	store      tokenstore.Store

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collectors
}

func newApp() *app {
	return &app{env: &env.OSReader{}}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "oauthctl",
		Short:         "OAuth client for the Twitch identity provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.flushMetrics()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Path to the YAML configuration file (default $XDG_CONFIG_HOME/toolhive-oauth/config.yaml)")
	f.StringVar(&a.envFile, "env-file", env.DefaultDotenvFile, "Dotenv file to load; missing files are ignored")
	f.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	f.StringVar(&a.logFormat, "log-format", "text", "Log format: json or text")
	f.StringVar(&a.storePath, "store", "", "Token store file (default $XDG_DATA_HOME/toolhive-oauth/tokens.json)")
	f.StringVar(&a.tokenKey, "token-key", defaultTokenKey, "Key under which tokens are stored")
	f.StringVar(&a.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")
	f.StringVar(&a.discoverIssuer, "discover", "", "Take endpoints from this issuer's OIDC discovery document")
	f.Lookup("discover").NoOptDefVal = oauth.DefaultIssuer

	root.AddCommand(
		newLoginCmd(a),
		newRefreshCmd(a),
		newValidateCmd(a),
		newRevokeCmd(a),
		newAppTokenCmd(a),
		newStateCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.env == nil {
		a.env = &env.OSReader{}
	}
	if err := env.LoadDotenv(a.envFile); err != nil {
		return err
	}

	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(a.logFormat)
	if err != nil {
		return err
	}
	a.logger = logging.New(
		logging.WithFormat(format),
		logging.WithLevel(level),
		logging.WithOutput(cmd.ErrOrStderr()),
	)

	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	if err := a.cfg.ApplyEnv(a.env); err != nil {
		return err
	}
	if a.discoverIssuer != "" {
		if err := a.discover(cmd.Context()); err != nil {
			return err
		}
	}

	if a.store == nil {
		path := a.storePath
		if path == "" {
			path = tokenstore.DefaultPath()
		}
		a.store = tokenstore.NewFileStore(path)
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewCollectors()
	return a.metrics.Register(a.registry)
}

// discover replaces the configured endpoints with those of the issuer's
// discovery document. A configured validation URL is kept, since discovery
// documents do not carry one.
func (a *app) discover(ctx context.Context) error {
	md, err := oauth.Discover(ctx, a.httpClient, a.discoverIssuer)
	if err != nil {
		return err
	}
	var validateURL string
	if a.cfg.Endpoints != nil {
		validateURL = a.cfg.Endpoints.ValidateURL
	}
	e := md.Endpoints(validateURL)
	a.cfg.Endpoints = &e
	a.logger.Debug("endpoints discovered", "issuer", md.Issuer, "token_url", e.TokenURL)
	return nil
}

func (a *app) client() (*client.Client, error) {
	cc, err := a.cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	opts := append(a.cfg.ClientOptions(),
		client.WithLogger(a.logger),
		client.WithMetrics(a.metrics),
	)
	if a.httpClient != nil {
		opts = append(opts, client.WithHTTPClient(a.httpClient))
	}
	return client.New(cc, opts...)
}

// accessToken returns the token given on the command line, or the stored one.
func (a *app) accessToken(args []string) (tok string, stored bool, err error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], false, nil
	}
	t, err := a.store.Load(a.tokenKey)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return "", false, fmt.Errorf("no token given and none stored under %q; run login first", a.tokenKey)
		}
		return "", false, err
	}
	return t.AccessToken, true, nil
}

func (a *app) flushMetrics() error {
	if a.metricsTextfile == "" || a.registry == nil {
		return nil
	}
	return prometheus.WriteToTextfile(a.metricsTextfile, a.registry)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
