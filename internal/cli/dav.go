// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/gogama/davx/request"
	"github.com/gogama/davx/result"
	"github.com/gogama/davx/webdav"
	"github.com/spf13/cobra"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec METHOD URL",
		Short: "Execute an arbitrary request",
		Long: `Exec sends one request with any HTTP or WebDAV method. URL may be
absolute or a path relative to the account's WebDAV files root.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			u, err := s.filesURL(args[1])
			if err != nil {
				return err
			}
			data, _ := cmd.Flags().GetString("data")
			var body interface{}
			if data != "" {
				body = data
			}
			p, err := request.NewPlan(strings.ToUpper(args[0]), u, body)
			if err != nil {
				return err
			}
			headers, _ := cmd.Flags().GetStringArray("header")
			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q (expected 'Name: value')", h)
				}
				p.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
			}
			if dst, _ := cmd.Flags().GetString("destination"); dst != "" {
				if dst, err = s.filesURL(dst); err != nil {
					return err
				}
				p.SetDestination(dst)
			}
			p.SuccessCodes, _ = cmd.Flags().GetIntSlice("success")
			return s.run(cmd, p)
		},
	}
	cmd.Flags().StringP("data", "d", "", "Request body")
	cmd.Flags().StringArrayP("header", "H", nil, "Extra header (repeatable, e.g., -H 'Depth: 1')")
	cmd.Flags().String("destination", "", "WebDAV Destination header")
	cmd.Flags().IntSlice("success", nil, "Statuses that count as success (default any 2xx)")
	return cmd
}

func newPropfindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propfind PATH",
		Short: "List the properties of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			depth, _ := cmd.Flags().GetString("depth")
			switch webdav.Depth(depth) {
			case webdav.Depth0, webdav.Depth1, webdav.DepthInfinity:
			default:
				return fmt.Errorf("invalid depth %q (use 0, 1 or infinity)", depth)
			}
			var body interface{}
			if b, _ := cmd.Flags().GetString("body"); b != "" {
				body = b
			}
			return runPath(cmd, args[0], func(u string) (*request.Plan, error) {
				return webdav.Propfind(u, webdav.Depth(depth), body)
			})
		},
	}
	cmd.Flags().String("depth", string(webdav.Depth1), "Depth header (0, 1, infinity)")
	cmd.Flags().String("body", "", "PROPFIND request body (default allprop)")
	return cmd
}

func newMkcolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkcol PATH",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd, args[0], webdav.Mkcol)
		},
	}
}

func newTransferCmd(name string) *cobra.Command {
	transfer := webdav.Move
	if name == "copy" {
		transfer = webdav.Copy
	}
	cmd := &cobra.Command{
		Use:   name + " SRC DST",
		Short: strings.ToUpper(name[:1]) + name[1:] + " a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			src, err := s.filesURL(args[0])
			if err != nil {
				return err
			}
			dst, err := s.filesURL(args[1])
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			p, err := transfer(src, dst, overwrite)
			if err != nil {
				return err
			}
			return s.run(cmd, p)
		},
	}
	cmd.Flags().Bool("overwrite", false, "Overwrite an existing destination")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH",
		Short: "Download a file to standard output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd, args[0], webdav.Get)
		},
	}
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put PATH",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			data, _ := cmd.Flags().GetString("data")
			contentType, _ := cmd.Flags().GetString("content-type")
			var body interface{} = data
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("%s", result.FromError[any](err))
				}
				body = f
			}
			return runPath(cmd, args[0], func(u string) (*request.Plan, error) {
				return webdav.Put(u, contentType, body)
			})
		},
	}
	cmd.Flags().String("file", "", "Local file to upload")
	cmd.Flags().StringP("data", "d", "", "Content to upload when no file is given")
	cmd.Flags().String("content-type", "application/octet-stream", "Content-Type header")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PATH",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd, args[0], webdav.Delete)
		},
	}
}

// runPath runs the plan newPlan builds for the URL of path.
func runPath(cmd *cobra.Command, path string, newPlan func(string) (*request.Plan, error)) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	u, err := s.filesURL(path)
	if err != nil {
		return err
	}
	p, err := newPlan(u)
	if err != nil {
		return err
	}
	return s.run(cmd, p)
}
