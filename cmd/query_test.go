// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bindery/bindery/config"
	"github.com/bindery/bindery/match"
	"github.com/bindery/bindery/util"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.ParseConfig(nil, "test")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return cfg
}

func TestDoQuery(t *testing.T) {
	input := `{
		"alice": {"name": "alice", "role": "admin"},
		"bob": {"name": "bob", "role": "viewer"},
		"carol": {"name": "carol", "role": "admin"}
	}`

	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag(), pattern: `{"role": "admin"}`}

	if err := doQuery(params, testConfig(t), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, `"alice"`) || !strings.Contains(output, `"carol"`) {
		t.Fatalf("Expected admins in output but got:\n%v", output)
	}
	if strings.Contains(output, `"bob"`) {
		t.Fatalf("Expected bob filtered out but got:\n%v", output)
	}
}

func TestDoQueryJSON(t *testing.T) {
	input := `{
		"a": {"x": 1},
		"b": {"x": 1}
	}`

	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag()}
	if err := params.outputFormat.Set(formatJSON); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := doQuery(params, testConfig(t), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var result struct {
		Hashes []string          `json:"hashes"`
		Counts map[string]uint64 `json:"counts"`
	}
	if err := util.UnmarshalJSON(out.Bytes(), &result); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Hashes) != 1 {
		t.Fatalf("Expected 1 distinct record but got %v", result.Hashes)
	}
	if result.Counts[result.Hashes[0]] != 2 {
		t.Fatalf("Expected count 2 but got %v", result.Counts)
	}
}

func TestDoQueryWildcardPattern(t *testing.T) {
	input := `{
		"alice": {"name": "alice", "team": "core"},
		"bob": {"name": "bob", "team": "infra"},
		"carol": {"name": "carol"}
	}`

	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag(), pattern: `{"team": null}`}

	if err := doQuery(params, testConfig(t), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, `"alice"`) || !strings.Contains(output, `"bob"`) {
		t.Fatalf("Expected records with a team field but got:\n%v", output)
	}
	if strings.Contains(output, `"carol"`) {
		t.Fatalf("Expected carol filtered out but got:\n%v", output)
	}
}

func TestDoQueryReify(t *testing.T) {
	input := `{
		"addr": {"city": "Oslo", "zip": "0150"},
		"alice": {"name": "alice", "role": "admin", "address": {"$ref": "addr"}},
		"bob": {"name": "bob", "role": "viewer"}
	}`

	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag(), pattern: `{"role": "admin"}`, reify: true}
	if err := params.outputFormat.Set(formatJSON); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := doQuery(params, testConfig(t), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	exp := util.MustUnmarshalJSON([]byte(`[{
		"id": "alice",
		"record": {
			"address": {"city": "Oslo", "zip": "0150"},
			"name": "alice",
			"role": "admin"
		}
	}]`))
	act := util.MustUnmarshalJSON(out.Bytes())
	if diff := cmp.Diff(exp, act); diff != "" {
		t.Error("unexpected reified output (-want, +got):", diff)
	}
}

func TestDoQueryReifyPretty(t *testing.T) {
	input := `{
		"addr": {"city": "Oslo"},
		"alice": {"name": "alice", "address": {"$ref": "addr"}}
	}`

	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag(), pattern: `{"name": "alice"}`, reify: true}

	if err := doQuery(params, testConfig(t), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := out.String()
	if !strings.HasPrefix(output, "alice: ") {
		t.Fatalf("Expected per-id listing but got:\n%v", output)
	}
	if !strings.Contains(output, `"Oslo"`) {
		t.Fatalf("Expected resolved reference but got:\n%v", output)
	}
	if strings.Contains(output, "$ref") {
		t.Fatalf("Expected reference replaced but got:\n%v", output)
	}
}

func TestDoQueryMetrics(t *testing.T) {
	input := `{"a": {"x": 1}}`

	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag(), metrics: true}

	if err := doQuery(params, testConfig(t), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "METRIC") {
		t.Fatalf("Expected metrics table but got:\n%v", output)
	}
	if !strings.Contains(output, "histogram_store_transact") {
		t.Fatalf("Expected transaction metrics but got:\n%v", output)
	}
}

func TestDoQueryEmptyInput(t *testing.T) {
	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag()}

	if err := doQuery(params, testConfig(t), strings.NewReader(""), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestDoQueryInvalidPattern(t *testing.T) {
	var out bytes.Buffer
	params := queryCommandParams{outputFormat: newFormatFlag(), pattern: `{"role":`}

	err := doQuery(params, testConfig(t), strings.NewReader(`{"a": {"x": 1}}`), &out)
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

func TestParsePattern(t *testing.T) {
	pattern, err := parsePattern(`{"role": "admin", "team": null}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	fields, ok := pattern.(map[string]any)
	if !ok {
		t.Fatalf("Expected field map but got %T", pattern)
	}
	if fields["team"] != match.Wildcard {
		t.Fatalf("Expected null to become a wildcard but got %v", fields["team"])
	}

	pattern, err = parsePattern("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pattern != nil {
		t.Fatalf("Expected nil pattern but got %v", pattern)
	}
}
