// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command davx executes WebDAV and OCS requests against a file sync
// server and prints the classified result.
package main

import (
	"fmt"
	"os"

	"github.com/gogama/davx/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
