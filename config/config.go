// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config implements configuration file parsing and validation.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/bindery/bindery/util"
	"github.com/bindery/bindery/version"
)

const defaultQueryCacheSize = 128

// LoggingConfig represents the logging options.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// StoreConfig represents the record store options.
type StoreConfig struct {
	// QueryCacheSize is the number of query results the store keeps cached
	// between commits.
	QueryCacheSize int `json:"query_cache_size,omitempty"`
}

// Config represents the configuration file the engine can be started with.
type Config struct {
	Labels  map[string]string          `json:"labels,omitempty"`
	Logging *LoggingConfig             `json:"logging,omitempty"`
	Store   *StoreConfig               `json:"store,omitempty"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// ParseConfig returns a valid Config object with defaults injected. The id
// and version parameters will be set in the labels map. Raw config may be
// JSON or YAML; unrecognized top-level keys are preserved in Extra.
func ParseConfig(raw []byte, id string) (*Config, error) {
	var result Config
	objValue := reflect.ValueOf(&result).Elem()
	knownFields := map[string]reflect.Value{}
	for i := 0; i != objValue.NumField(); i++ {
		jsonName := strings.Split(objValue.Type().Field(i).Tag.Get("json"), ",")[0]
		knownFields[jsonName] = objValue.Field(i)
	}

	if err := util.Unmarshal(raw, &result.Extra); err != nil {
		return nil, err
	}

	for key, chunk := range result.Extra {
		if field, found := knownFields[key]; found {
			if err := util.Unmarshal(chunk, field.Addr().Interface()); err != nil {
				return nil, err
			}
			delete(result.Extra, key)
		}
	}
	if len(result.Extra) == 0 {
		result.Extra = nil
	}
	return &result, result.validateAndInjectDefaults(id)
}

// QueryCacheSize returns the configured query cache size, or the default if
// none is configured.
func (c *Config) QueryCacheSize() int {
	if c.Store == nil || c.Store.QueryCacheSize == 0 {
		return defaultQueryCacheSize
	}
	return c.Store.QueryCacheSize
}

// Clone creates a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := &Config{}
	if c.Labels != nil {
		clone.Labels = maps.Clone(c.Labels)
	}
	if c.Logging != nil {
		cp := *c.Logging
		clone.Logging = &cp
	}
	if c.Store != nil {
		cp := *c.Store
		clone.Store = &cp
	}
	if c.Extra != nil {
		clone.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			clone.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return clone
}

func (c *Config) validateAndInjectDefaults(id string) error {
	if c.Store != nil && c.Store.QueryCacheSize < 0 {
		return fmt.Errorf("invalid query cache size: %d", c.Store.QueryCacheSize)
	}

	if c.Labels == nil {
		c.Labels = map[string]string{}
	}

	c.Labels["id"] = id
	c.Labels["version"] = version.Version

	return nil
}
