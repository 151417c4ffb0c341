// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/tomtom215/mcpbridge/internal/config"
)

// cliOptions are the parsed command line.
type cliOptions struct {
	load    config.Options
	version bool
}

// parseFlags parses args (without the program name). Everything after the
// first positional argument belongs to the child command, so the child's own
// flags are never interpreted here.
func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	fs := pflag.NewFlagSet("mcpbridge", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mcpbridge [flags] <command> [args...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var opts cliOptions
	fs.StringVar(&opts.load.ConfigPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.load.EnvFile, "env-file", config.DefaultEnvFile, "dotenv file, ignored if missing")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	opts.load.Command = fs.Args()
	return opts, nil
}
