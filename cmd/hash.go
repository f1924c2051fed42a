// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pr "github.com/bindery/bindery/internal/presentation"
	"github.com/bindery/bindery/record"
	"github.com/bindery/bindery/util"
)

type hashCommandParams struct {
	outputFormat *util.EnumFlag
}

func init() {

	params := hashCommandParams{outputFormat: newFormatFlag()}

	var hashCommand = &cobra.Command{
		Use:   "hash [path]",
		Short: "Print structural digests of JSON values",
		Long: `Print structural digests of JSON values.

The 'hash' command reads a stream of JSON values from a file or stdin and
prints the content digest of each. Digests are structural: two values that
differ only in object field order produce the same digest, and the digest of
a value is stable across processes and platforms.

Example:

  $ echo '{"b": 2, "a": 1} {"a": 1, "b": 2}' | bindery hash
`,
		PreRunE: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("specify at most one input file")
			}
			return nil
		},
		Run: func(_ *cobra.Command, args []string) {
			err := runWithInput(args, func(r io.Reader) error {
				return doHash(params, r, os.Stdout)
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
		},
	}

	addOutputFormat(hashCommand.Flags(), params.outputFormat)
	RootCommand.AddCommand(hashCommand)
}

func doHash(params hashCommandParams, r io.Reader, out io.Writer) error {
	type hashed struct {
		Digest string `json:"digest"`
		Value  any    `json:"value"`
	}

	decoder := util.NewJSONDecoder(r)
	results := []hashed{}
	for {
		var x any
		if err := decoder.Decode(&x); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return err
		}
		v, err := record.InterfaceToValue(x)
		if err != nil {
			return err
		}
		results = append(results, hashed{Digest: v.Digest().String(), Value: x})
	}

	if params.outputFormat.String() == formatJSON {
		return pr.JSON(out, results)
	}
	for i := range results {
		fmt.Fprintln(out, results[i].Digest)
	}
	return nil
}
