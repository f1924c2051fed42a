// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/version"
)

func init() {

	var versionCommand = &cobra.Command{
		Use:   "version",
		Short: "Print the version of bindery",
		Long:  "Show version and build information.",
		Run: func(*cobra.Command, []string) {
			generateCmdOutput(os.Stdout)
		},
	}

	RootCommand.AddCommand(versionCommand)
}

func generateCmdOutput(out io.Writer) {
	fmt.Fprintln(out, "Version: "+version.Version)
	fmt.Fprintln(out, "Build Commit: "+version.Vcs)
	fmt.Fprintln(out, "Build Timestamp: "+version.Timestamp)
	fmt.Fprintln(out, "Go Version: "+version.GoVersion)
	fmt.Fprintln(out, "Platform: "+version.Platform)
}
