// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

/*
Package config provides configuration loading for the bridge.

Configuration is layered with Koanf v2, each layer overriding the previous:

 1. Struct defaults
 2. YAML file (--config, CONFIG_PATH, ./mcpbridge.yaml, /etc/mcpbridge/config.yaml)
 3. Dotenv file (--env-file, default ./.env; missing files are ignored)
 4. Process environment
 5. Positional command line arguments (the child command)

A variable set in the real environment always beats the same variable in the
dotenv file.

# Environment Variables

Required:
  - MCP_ENDPOINT: ws:// or wss:// URL of the remote endpoint

Child process:
  - MCP_COMMAND: Command line when no positional arguments are given
  - MCP_INTERPRETER: Optional interpreter prepended to the command
  - MCP_WORK_DIR, PROCESS_GRACE_PERIOD

Reconnect:
  - RECONNECT_INITIAL_BACKOFF (1s), RECONNECT_MAX_BACKOFF (60s), RECONNECT_JITTER (0.1)

Every other key is listed on the struct that owns it in config.go.

# Example

	cfg, err := config.Load(config.Options{Command: flag.Args()})
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

Validation runs go-playground/validator over the struct tags and then the
cross-field checks in config_validate.go. Errors name the koanf path or the
environment variable at fault.
*/
package config
