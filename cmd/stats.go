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

	"github.com/bindery/bindery/bindings"
	pr "github.com/bindery/bindery/internal/presentation"
	"github.com/bindery/bindery/rank"
	"github.com/bindery/bindery/record"
	"github.com/bindery/bindery/util"
)

type statsCommandParams struct {
	outputFormat *util.EnumFlag
	groupBy      []string
	top          int
	scoreKey     string
}

func init() {

	params := statsCommandParams{outputFormat: newFormatFlag()}

	var statsCommand = &cobra.Command{
		Use:   "stats [path]",
		Short: "Summarize a collection of records",
		Long: `Summarize a collection of records.

The 'stats' command reads a JSON or YAML array of records from a file or
stdin, builds a binding multiset from it, and prints the distinct records
with their multiplicities in digest order. Structurally equal records
collapse into one row regardless of field order.

With --group-by the records are additionally partitioned by the named fields
and one table is printed per group. With --top the highest scoring records
are ranked by the field named with --score-key.
`,
		PreRunE: func(_ *cobra.Command, args []string) error {
			return validateStatsParams(&params, args)
		},
		Run: func(_ *cobra.Command, args []string) {
			err := runWithInput(args, func(r io.Reader) error {
				return doStats(params, r, os.Stdout)
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
		},
	}

	addOutputFormat(statsCommand.Flags(), params.outputFormat)
	addGroupBy(statsCommand.Flags(), &params.groupBy)
	statsCommand.Flags().IntVarP(&params.top, "top", "n", 0, "rank the n highest scoring records")
	statsCommand.Flags().StringVarP(&params.scoreKey, "score-key", "k", "score", "set the field read by --top scoring")
	RootCommand.AddCommand(statsCommand)
}

func validateStatsParams(p *statsCommandParams, args []string) error {
	if len(args) > 1 {
		return errors.New("specify at most one input file")
	}
	if p.top < 0 {
		return errors.New("--top must not be negative")
	}
	return nil
}

func doStats(params statsCommandParams, r io.Reader, out io.Writer) error {
	bs, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var xs []any
	if err := util.Unmarshal(bs, &xs); err != nil {
		return err
	}

	ms := bindings.NewMultiset(bindings.New())
	if err := ms.AddAll(xs...); err != nil {
		return err
	}

	var groups []bindings.Group
	if len(params.groupBy) > 0 {
		groups = ms.GroupByKey(params.groupBy...)
	}
	var top []rank.Result
	if params.top > 0 {
		top = rank.Top(ms, rank.ByKey(params.scoreKey), params.top)
	}

	if params.outputFormat.String() == formatJSON {
		type groupOutput struct {
			Key     record.Value       `json:"key"`
			Members *bindings.Multiset `json:"members"`
		}
		output := struct {
			Multiset    *bindings.Multiset `json:"multiset"`
			Distinct    int                `json:"distinct"`
			Cardinality uint64             `json:"cardinality"`
			Groups      []groupOutput      `json:"groups,omitempty"`
			Top         []rank.Result      `json:"top,omitempty"`
		}{
			Multiset:    ms,
			Distinct:    ms.Len(),
			Cardinality: ms.Cardinality(),
			Top:         top,
		}
		for i := range groups {
			output.Groups = append(output.Groups, groupOutput{Key: groups[i].Key, Members: groups[i].Members})
		}
		return pr.JSON(out, output)
	}

	pr.Multiset(out, ms)
	fmt.Fprintf(out, "distinct: %d, cardinality: %d\n", ms.Len(), ms.Cardinality())
	if len(groups) > 0 {
		pr.Groups(out, groups)
	}
	if len(top) > 0 {
		pr.Ranking(out, top)
	}
	return nil
}
