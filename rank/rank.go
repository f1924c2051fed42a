// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package rank orders binding multiset members by score.
package rank

import (
	"slices"

	"github.com/bindery/bindery/bindings"
	"github.com/bindery/bindery/record"
)

// ScoreFunc computes the score of a record.
type ScoreFunc func(rec *record.Record) float64

// Result holds one ranked record.
type Result struct {
	Record *record.Record `json:"record"`
	Score  float64        `json:"score"`
	Count  uint64         `json:"count"`
}

// Rank returns the distinct members of the multiset ordered by descending
// score. Records with equal scores order by digest, so a ranking is
// deterministic for a given multiset and score function. Multiplicities carry
// through in Count.
func Rank(ms *bindings.Multiset, score ScoreFunc) []Result {
	out := make([]Result, 0, ms.Len())
	ms.Iter(func(rec *record.Record, n uint64) bool {
		out = append(out, Result{Record: rec, Score: score(rec), Count: n})
		return false
	})
	slices.SortFunc(out, func(a, b Result) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return a.Record.Digest().Compare(b.Record.Digest())
	})
	return out
}

// Top returns the n highest ranked results, or all of them if the multiset
// holds fewer than n distinct records.
func Top(ms *bindings.Multiset, score ScoreFunc, n int) []Result {
	ranked := Rank(ms, score)
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// ByKey returns a score function reading the named field. Records that do not
// bind the field, or bind it to a non-numeric value, score zero.
func ByKey(name string) ScoreFunc {
	return func(rec *record.Record) float64 {
		v, ok := rec.Get(name)
		if !ok {
			return 0
		}
		num, ok := v.(record.Number)
		if !ok {
			return 0
		}
		return float64(num)
	}
}
