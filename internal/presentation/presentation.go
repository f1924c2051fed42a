// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package presentation prints multisets, groups, and rankings in json and
// tabular formats.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/bindery/bindery/bindings"
	"github.com/bindery/bindery/metrics"
	"github.com/bindery/bindery/rank"
	"github.com/bindery/bindery/record"
)

// shortDigestLen trims digest hex in table output; the full digest is
// available from the json format.
const shortDigestLen = 12

// JSON writes x to w with indentation.
func JSON(w io.Writer, x any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(x)
}

// Multiset renders the multiset as a digest/count/record table.
func Multiset(w io.Writer, ms *bindings.Multiset) {
	table := generateTableWithKeys(w, "digest", "count", "record")
	ms.Iter(func(rec *record.Record, n uint64) bool {
		table.Append([]string{shortDigest(rec.Digest()), strconv.FormatUint(n, 10), rec.String()})
		return false
	})
	table.Render()
}

// Groups renders one table per group preceded by the group key.
func Groups(w io.Writer, groups []bindings.Group) {
	for i := range groups {
		fmt.Fprintf(w, "GROUP %s:\n", groups[i].Key.String())
		Multiset(w, groups[i].Members)
	}
}

// Ranking renders ranked results as a rank/score/count/record table.
func Ranking(w io.Writer, results []rank.Result) {
	table := generateTableWithKeys(w, "rank", "score", "count", "record")
	for i, r := range results {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(r.Score, 'g', -1, 64),
			strconv.FormatUint(r.Count, 10),
			r.Record.String(),
		})
	}
	table.Render()
}

// Metrics renders a metrics snapshot as a name/value table in name order.
func Metrics(w io.Writer, m metrics.Metrics) {
	table := generateTableWithKeys(w, "metric", "value")
	all := m.All()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		table.Append([]string{k, fmt.Sprintf("%v", all[k])})
	}
	table.Render()
}

func generateTableWithKeys(writer io.Writer, keys ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(writer)
	aligns := make([]int, 0, len(keys))
	hdrs := make([]string, 0, len(keys))
	for _, k := range keys {
		hdrs = append(hdrs, k)
		aligns = append(aligns, tablewriter.ALIGN_LEFT)
	}
	table.SetHeader(hdrs)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetColumnAlignment(aligns)
	table.SetAutoWrapText(false)
	return table
}

func shortDigest(d record.Digest) string {
	return d.String()[:shortDigestLen]
}
