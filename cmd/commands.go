// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd implements the bindery command line interface.
package cmd

import (
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/bindery/bindery/config"
	internal_logging "github.com/bindery/bindery/internal/logging"
	"github.com/bindery/bindery/logging"
)

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = &cobra.Command{
	Use:   path.Base(os.Args[0]),
	Short: "Bindery",
	Long:  "Content-addressed multisets of binding records.",
}

var rootParams = struct {
	configFile string
	logLevel   string
	logFormat  string
}{}

// activeConfig holds the configuration parsed before a command runs.
var activeConfig = &config.Config{}

func init() {
	fs := RootCommand.PersistentFlags()
	fs.StringVarP(&rootParams.configFile, "config", "c", "", "set path of configuration file")
	fs.StringVarP(&rootParams.logLevel, "log-level", "l", "", "set log level (debug, info, warn, error)")
	fs.StringVarP(&rootParams.logFormat, "log-format", "", "", "set log format (text, json, json-pretty)")

	RootCommand.PersistentPreRunE = func(*cobra.Command, []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		activeConfig = cfg
		return setupLogging(cfg)
	}
}

func loadConfig() (*config.Config, error) {
	var raw []byte
	if rootParams.configFile != "" {
		bs, err := os.ReadFile(rootParams.configFile)
		if err != nil {
			return nil, err
		}
		raw = bs
	}
	return config.ParseConfig(raw, "cli")
}

// setupLogging applies the configured level and format to the standard
// logger. Flags win over the configuration file.
func setupLogging(cfg *config.Config) error {
	var level, format string
	if cfg.Logging != nil {
		level = cfg.Logging.Level
		format = cfg.Logging.Format
	}
	if rootParams.logLevel != "" {
		level = rootParams.logLevel
	}
	if rootParams.logFormat != "" {
		format = rootParams.logFormat
	}

	lvl, err := internal_logging.GetLevel(level)
	if err != nil {
		return err
	}
	logging.Get().SetLevel(lvl)
	logging.Get().SetFormatter(internal_logging.GetFormatter(format))
	return nil
}

// runWithInput invokes f with the named input file, or stdin if no file was
// given.
func runWithInput(args []string, f func(r io.Reader) error) error {
	if len(args) == 0 {
		return f(os.Stdin)
	}
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()
	return f(file)
}
