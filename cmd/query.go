// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/config"
	pr "github.com/bindery/bindery/internal/presentation"
	"github.com/bindery/bindery/logging"
	"github.com/bindery/bindery/match"
	"github.com/bindery/bindery/metrics"
	"github.com/bindery/bindery/record"
	"github.com/bindery/bindery/store"
	"github.com/bindery/bindery/util"
)

type queryCommandParams struct {
	outputFormat *util.EnumFlag
	pattern      string
	reify        bool
	metrics      bool
}

func init() {

	params := queryCommandParams{outputFormat: newFormatFlag()}

	var queryCommand = &cobra.Command{
		Use:   "query [path]",
		Short: "Load records into a store and query them",
		Long: `Load records into a store and query them.

The 'query' command reads a JSON or YAML object mapping record ids to record
values from a file or stdin, commits the records to an in-memory store, and
prints the multiset of records matching the pattern.

The pattern is a JSON object of required field values. A null field value
matches any value, so

  $ bindery query -p '{"role": "admin", "team": null}' data.json

matches records whose role is "admin" and that carry a team field of any
value. Without --pattern every record matches.

With --reify matching records are printed per id with reference fields of
the form {"$ref": "<id>"} replaced by the referenced record.
`,
		PreRunE: func(_ *cobra.Command, args []string) error {
			return validateQueryParams(&params, args)
		},
		Run: func(_ *cobra.Command, args []string) {
			err := runWithInput(args, func(r io.Reader) error {
				return doQuery(params, activeConfig, r, os.Stdout)
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
		},
	}

	addOutputFormat(queryCommand.Flags(), params.outputFormat)
	queryCommand.Flags().StringVarP(&params.pattern, "pattern", "p", "", "set the pattern records must match")
	queryCommand.Flags().BoolVarP(&params.reify, "reify", "", false, "resolve references in matching records")
	addMetrics(queryCommand.Flags(), &params.metrics)
	RootCommand.AddCommand(queryCommand)
}

func validateQueryParams(p *queryCommandParams, args []string) error {
	if len(args) > 1 {
		return errors.New("specify at most one input file")
	}
	return nil
}

func doQuery(params queryCommandParams, cfg *config.Config, r io.Reader, out io.Writer) error {
	bs, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var records map[string]any
	if err := util.Unmarshal(bs, &records); err != nil {
		return err
	}

	m := metrics.New()
	s, err := store.New(
		store.WithLogger(logging.Get()),
		store.WithMetrics(m),
		store.WithQueryCacheSize(cfg.QueryCacheSize()),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if len(records) > 0 {
		ids := make([]string, 0, len(records))
		for id := range records {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		ops := make([]store.Op, len(ids))
		for i, id := range ids {
			ops[i] = store.Op{Kind: store.AddOp, ID: id, Value: records[id]}
		}
		if _, err := s.Transact(ctx, ops); err != nil {
			return err
		}
	}

	pattern, err := parsePattern(params.pattern)
	if err != nil {
		return err
	}

	if params.reify {
		if err := queryReified(s, pattern, params.outputFormat.String(), out); err != nil {
			return err
		}
	} else {
		result, err := s.Query(ctx, pattern)
		if err != nil {
			return err
		}
		if params.outputFormat.String() == formatJSON {
			if err := pr.JSON(out, result); err != nil {
				return err
			}
		} else {
			pr.Multiset(out, result)
		}
	}

	if params.metrics {
		pr.Metrics(out, m)
	}
	return nil
}

// parsePattern turns the --pattern argument into a match pattern. Null field
// values become wildcards so that presence-only constraints can be written
// in plain JSON.
func parsePattern(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	var fields map[string]any
	if err := util.UnmarshalJSON([]byte(s), &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		if v == nil {
			fields[k] = match.Wildcard
		}
	}
	return fields, nil
}

// queryReified prints the matching records per id with references resolved.
func queryReified(s *store.Store, pattern any, format string, out io.Writer) error {
	f, err := match.Compile(pattern)
	if err != nil {
		return err
	}

	type entity struct {
		ID     string         `json:"id"`
		Record *record.Record `json:"record"`
	}
	var entities []entity
	for _, id := range s.IDs() {
		h, err := s.Get(id)
		if err != nil {
			return err
		}
		if !f(h.Record()) {
			continue
		}
		resolved, err := s.Resolve(id)
		if err != nil {
			return err
		}
		entities = append(entities, entity{ID: id, Record: resolved})
	}

	if format == formatJSON {
		return pr.JSON(out, entities)
	}
	for i := range entities {
		fmt.Fprintf(out, "%s: %s\n", entities[i].ID, entities[i].Record)
	}
	return nil
}
