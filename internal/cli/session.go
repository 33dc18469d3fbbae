// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	"github.com/gogama/davx"
	"github.com/gogama/davx/internal/config"
	"github.com/gogama/davx/internal/logging"
	"github.com/gogama/davx/netpref"
	"github.com/gogama/davx/request"
	"github.com/gogama/davx/result"
	"github.com/gogama/davx/timeout"
	"github.com/gogama/davx/webdav"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// A session is the client and settings shared by one command
// invocation.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	client   *davx.Client
	noFollow bool
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := flags.GetString("user"); v != "" {
		cfg.User = v
	}
	if v, _ := flags.GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	noFollow, _ := flags.GetBool("no-follow")

	log, err := logging.New(cfg.Log.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	prefs := netpref.New()
	doer, err := davx.NewHTTPDoer(cfg.TransportConfig.HTTPDoer(prefs))
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	return &session{
		cfg: cfg,
		log: log,
		client: &davx.Client{
			HTTPDoer:      doer,
			TimeoutPolicy: timeout.FromPlan(timeout.Fixed(cfg.Timeout)),
			Preferences:   prefs,
			Logger:        log,
		},
		noFollow: noFollow,
	}, nil
}

// filesURL returns path unchanged if it is an absolute URL, and
// otherwise the WebDAV URL of path in the configured account.
func (s *session) filesURL(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if s.cfg.BaseURL == "" || s.cfg.User == "" {
		return "", fmt.Errorf("base URL and user are required for relative path %q (use --base-url and --user)", path)
	}
	return webdav.FilesURL(s.cfg.BaseURL, s.cfg.User, path), nil
}

// prepare applies the session credentials and settings to p.
func (s *session) prepare(cmd *cobra.Command, p *request.Plan) *request.Plan {
	if s.cfg.User != "" {
		p.SetBasicAuth(s.cfg.User, s.cfg.Password)
	}
	p.NoFollow = s.noFollow
	return p.WithContext(cmd.Context())
}

// run executes p and writes the response body of a successful request
// to the command output. An unsuccessful result is returned as an
// error.
func (s *session) run(cmd *cobra.Command, p *request.Plan) error {
	defer func() { _ = s.log.Sync() }()
	r := davx.Decode(s.client, s.prepare(cmd, p), func(b []byte) ([]byte, error) {
		return b, nil
	})
	return s.report(cmd, r, func(body []byte) error {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	})
}

func (s *session) report(cmd *cobra.Command, r *result.Result[[]byte], write func([]byte) error) error {
	s.log.Debug("request finished", zap.Stringer("result", r))
	if !r.Success() {
		return fmt.Errorf("%s", r)
	}
	if loc := r.RedirectedLocation(); loc != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "redirected to %s\n", loc)
	}
	return write(r.Payload())
}
