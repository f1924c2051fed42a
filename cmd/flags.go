// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/pflag"

	"github.com/bindery/bindery/util"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
)

func newFormatFlag() *util.EnumFlag {
	return util.NewEnumFlag(formatPretty, []string{formatPretty, formatJSON})
}

func addOutputFormat(fs *pflag.FlagSet, format *util.EnumFlag) {
	fs.VarP(format, "format", "f", "set output format")
}

func addGroupBy(fs *pflag.FlagSet, names *[]string) {
	fs.StringSliceVarP(names, "group-by", "g", nil, "group records by the named fields")
}

func addMetrics(fs *pflag.FlagSet, metrics *bool) {
	fs.BoolVarP(metrics, "metrics", "", false, "report engine metrics")
}
