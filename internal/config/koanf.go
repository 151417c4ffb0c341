// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"mcpbridge.yaml",
	"mcpbridge.yml",
	"/etc/mcpbridge/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultEnvFile is the dotenv file read when no other is requested.
const DefaultEnvFile = ".env"

// Options carries the command line inputs to Load.
type Options struct {
	// ConfigPath is an explicit YAML file. It must exist when set.
	ConfigPath string

	// EnvFile is a dotenv file. A missing file is ignored.
	EnvFile string

	// Command, when non-empty, replaces process.command.
	Command []string
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by file, dotenv, env and flags.
func defaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:              "", // Required: MCP_ENDPOINT
			HandshakeTimeout: 10 * time.Second,
			WriteTimeout:     10 * time.Second,
			PingInterval:     30 * time.Second,
			PongWait:         60 * time.Second,
			ReadLimit:        0,
			Compression:      false,
		},
		Reconnect: ReconnectConfig{
			InitialBackoff: 1 * time.Second,
			MaxBackoff:     60 * time.Second,
			Jitter:         0.1,
		},
		Breaker: BreakerConfig{
			Enabled:          false,
			FailureThreshold: 5,
			OpenTimeout:      2 * time.Minute,
		},
		Process: ProcessConfig{
			Command:     nil, // Required: positional arguments or MCP_COMMAND
			Interpreter: "",
			WorkDir:     "",
			GracePeriod: 5 * time.Second,
		},
		Relay: RelayConfig{
			MaxLineBytes:           4 << 20,
			InboundRate:            0, // Unlimited
			InboundBurst:           10,
			DiagnosticsEndsSession: true,
		},
		Admin: AdminConfig{
			Enabled:   false,
			Addr:      "127.0.0.1:9464",
			RateLimit: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file, the
// optional dotenv file, the process environment and finally the command line.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := findConfigFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load dotenv file (optional). Values already present in the
	// real environment win, so this layer is applied before it.
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := loadDotenv(k, envFile); err != nil {
		return nil, err
	}

	// Layer 4: Load environment variables
	// MCP_ENDPOINT -> endpoint.url
	// RECONNECT_MAX_BACKOFF -> reconnect.max_backoff
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 5: Command line
	if len(opts.Command) > 0 {
		if err := k.Set("process.command", opts.Command); err != nil {
			return nil, fmt.Errorf("failed to set command: %w", err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile resolves the YAML file to load. An explicit path must exist;
// CONFIG_PATH and the default locations are only used when present.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// loadDotenv reads a dotenv file and applies the variables it defines through
// the same mapping table as the environment. Variables that are also set in
// the process environment are skipped there and picked up by the env layer.
func loadDotenv(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	dk := koanf.New(".")
	if err := dk.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	for key, val := range dk.All() {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		target := envTransformFunc(key)
		if target == "" {
			continue
		}
		if err := k.Set(target, val); err != nil {
			return fmt.Errorf("failed to set %s from %s: %w", target, path, err)
		}
	}
	return nil
}

// sliceConfigPaths defines which config paths arrive as strings from env vars
// and how each one is split.
var sliceConfigPaths = map[string]func(string) []string{
	"process.command": strings.Fields,
}

// processSliceFields converts string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for path, split := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file or flags), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			parts := split(strVal)
			if len(parts) == 0 {
				continue
			}
			if err := k.Set(path, parts); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Endpoint
	"mcp_endpoint":          "endpoint.url",
	"mcp_handshake_timeout": "endpoint.handshake_timeout",
	"mcp_write_timeout":     "endpoint.write_timeout",
	"mcp_ping_interval":     "endpoint.ping_interval",
	"mcp_pong_wait":         "endpoint.pong_wait",
	"mcp_read_limit":        "endpoint.read_limit",
	"mcp_compression":       "endpoint.compression",

	// Reconnect backoff
	"reconnect_initial_backoff": "reconnect.initial_backoff",
	"reconnect_max_backoff":     "reconnect.max_backoff",
	"reconnect_jitter":          "reconnect.jitter",

	// Dial circuit breaker
	"breaker_enabled":           "breaker.enabled",
	"breaker_failure_threshold": "breaker.failure_threshold",
	"breaker_open_timeout":      "breaker.open_timeout",

	// Child process
	"mcp_command":          "process.command",
	"mcp_interpreter":      "process.interpreter",
	"mcp_work_dir":         "process.work_dir",
	"process_grace_period": "process.grace_period",

	// Relays
	"relay_max_line_bytes":           "relay.max_line_bytes",
	"relay_inbound_rate":             "relay.inbound_rate",
	"relay_inbound_burst":            "relay.inbound_burst",
	"relay_diagnostics_ends_session": "relay.diagnostics_ends_session",

	// Admin server
	"admin_enabled":    "admin.enabled",
	"admin_addr":       "admin.addr",
	"admin_rate_limit": "admin.rate_limit",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor tree
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - MCP_ENDPOINT -> endpoint.url
//   - RECONNECT_MAX_BACKOFF -> reconnect.max_backoff
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
