// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gogama/davx/ocs"
	"github.com/spf13/cobra"
)

func newOCSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocs PATH",
		Short: "Call an OCS API endpoint",
		Long: `OCS calls the OCS JSON API endpoint at PATH below the server base URL,
for example "cloud/capabilities", and prints the data of the response
envelope as indented JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if s.cfg.BaseURL == "" {
				return fmt.Errorf("base URL is required (use --base-url or DAVX_BASE_URL)")
			}
			method, _ := cmd.Flags().GetString("method")
			v1, _ := cmd.Flags().GetBool("v1")
			version := ocs.V2
			if v1 {
				version = ocs.V1
			}
			params, _ := cmd.Flags().GetStringArray("param")
			form := url.Values{}
			for _, kv := range params {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid parameter %q (expected key=value)", kv)
				}
				form.Add(k, v)
			}
			var query url.Values
			var body interface{}
			method = strings.ToUpper(method)
			if method == "GET" || method == "DELETE" {
				query = form
			} else {
				body = form
			}

			p, err := ocs.NewPlan(method, s.cfg.BaseURL, version, args[0], query, body)
			if err != nil {
				return err
			}
			defer func() { _ = s.log.Sync() }()
			r := ocs.Execute[interface{}](s.client, s.prepare(cmd, p))
			if !r.Success() {
				return fmt.Errorf("%s", r)
			}
			out, err := sonic.ConfigStd.MarshalIndent(r.Payload(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().String("method", "GET", "HTTP method")
	cmd.Flags().Bool("v1", false, "Use OCS API version 1")
	cmd.Flags().StringArrayP("param", "p", nil, "Parameter key=value (repeatable); sent in the query for GET and DELETE, else form encoded")
	return cmd
}
