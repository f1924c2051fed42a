// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer

	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(Debug)

	logger.WithFields(map[string]any{"component": "registry"}).Debug("interned %d records", 3)

	out := buf.String()
	if !strings.Contains(out, "interned 3 records") {
		t.Fatalf("Expected message in output but got %q", out)
	}
	if !strings.Contains(out, "registry") {
		t.Fatalf("Expected field in output but got %q", out)
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	logger := New()

	child := logger.WithFields(map[string]any{"a": 1})
	grandchild := child.WithFields(map[string]any{"b": 2})

	if grandchild == child {
		t.Fatal("Expected WithFields to return a copy")
	}
	if len(logger.fields) != 0 {
		t.Fatalf("Expected parent fields to be empty but got %v", logger.fields)
	}
}

func TestLevels(t *testing.T) {
	logger := New()

	for _, level := range []Level{Error, Warn, Info, Debug} {
		logger.SetLevel(level)
		if got := logger.GetLevel(); got != level {
			t.Fatalf("Expected level %v but got %v", level, got)
		}
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()

	if logger.WithFields(map[string]any{"a": 1}) != logger {
		t.Fatal("Expected WithFields to return the same logger")
	}

	logger.SetLevel(Debug)
	if logger.GetLevel() != Debug {
		t.Fatalf("Expected Debug but got %v", logger.GetLevel())
	}
}
