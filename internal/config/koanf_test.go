// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate clears every mapped variable and moves into an empty directory so
// neither the developer's environment nor a stray .env leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	for key := range envMappings {
		t.Setenv(strings.ToUpper(key), "")
		os.Unsetenv(strings.ToUpper(key))
	}
	t.Setenv(ConfigPathEnvVar, "")

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// TestDefaultConfig verifies the built-in defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Endpoint.URL != "" {
		t.Errorf("Endpoint.URL should be empty by default, got %q", cfg.Endpoint.URL)
	}
	if cfg.Reconnect.InitialBackoff != time.Second {
		t.Errorf("Reconnect.InitialBackoff = %v, want 1s", cfg.Reconnect.InitialBackoff)
	}
	if cfg.Reconnect.MaxBackoff != 60*time.Second {
		t.Errorf("Reconnect.MaxBackoff = %v, want 60s", cfg.Reconnect.MaxBackoff)
	}
	if cfg.Reconnect.Jitter != 0.1 {
		t.Errorf("Reconnect.Jitter = %v, want 0.1", cfg.Reconnect.Jitter)
	}
	if cfg.Process.GracePeriod != 5*time.Second {
		t.Errorf("Process.GracePeriod = %v, want 5s", cfg.Process.GracePeriod)
	}
	if !cfg.Relay.DiagnosticsEndsSession {
		t.Error("Relay.DiagnosticsEndsSession should be true by default")
	}
	if cfg.Admin.Enabled {
		t.Error("Admin.Enabled should be false by default")
	}
	if cfg.Breaker.Enabled {
		t.Error("Breaker.Enabled should be false by default")
	}
}

func TestLoad_RequiresEndpointAndCommand(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		command []string
		wantErr string
	}{
		{
			name:    "missing endpoint",
			command: []string{"server.py"},
			wantErr: "endpoint.url is required",
		},
		{
			name:    "missing command",
			env:     map[string]string{"MCP_ENDPOINT": "wss://example.test/mcp"},
			wantErr: "process.command must have at least 1 entries",
		},
		{
			name:    "http scheme",
			env:     map[string]string{"MCP_ENDPOINT": "https://example.test/mcp"},
			command: []string{"server.py"},
			wantErr: "scheme must be ws or wss",
		},
		{
			name: "max backoff below initial",
			env: map[string]string{
				"MCP_ENDPOINT":              "ws://example.test",
				"RECONNECT_INITIAL_BACKOFF": "10s",
				"RECONNECT_MAX_BACKOFF":     "5s",
			},
			command: []string{"server.py"},
			wantErr: "RECONNECT_MAX_BACKOFF",
		},
		{
			name: "pong wait not above ping interval",
			env: map[string]string{
				"MCP_ENDPOINT":      "ws://example.test",
				"MCP_PING_INTERVAL": "30s",
				"MCP_PONG_WAIT":     "30s",
			},
			command: []string{"server.py"},
			wantErr: "MCP_PONG_WAIT",
		},
		{
			name: "grace period outlasts shutdown timeout",
			env: map[string]string{
				"MCP_ENDPOINT":                "ws://example.test",
				"PROCESS_GRACE_PERIOD":        "30s",
				"SUPERVISOR_SHUTDOWN_TIMEOUT": "10s",
			},
			command: []string{"server.py"},
			wantErr: "PROCESS_GRACE_PERIOD",
		},
		{
			name: "grace period without teardown margin",
			env: map[string]string{
				"MCP_ENDPOINT":                "ws://example.test",
				"PROCESS_GRACE_PERIOD":        "9500ms",
				"SUPERVISOR_SHUTDOWN_TIMEOUT": "10s",
			},
			command: []string{"server.py"},
			wantErr: "SUPERVISOR_SHUTDOWN_TIMEOUT",
		},
		{
			name: "invalid jitter",
			env: map[string]string{
				"MCP_ENDPOINT":     "ws://example.test",
				"RECONNECT_JITTER": "2",
			},
			command: []string{"server.py"},
			wantErr: "reconnect.jitter must be less than or equal to 1",
		},
		{
			name: "unknown log level",
			env: map[string]string{
				"MCP_ENDPOINT": "ws://example.test",
				"LOG_LEVEL":    "verbose",
			},
			command: []string{"server.py"},
			wantErr: `LOG_LEVEL "verbose" is not a known level`,
		},
		{
			name: "invalid log format",
			env: map[string]string{
				"MCP_ENDPOINT": "ws://example.test",
				"LOG_FORMAT":   "xml",
			},
			command: []string{"server.py"},
			wantErr: "logging.format must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(Options{Command: tt.command})
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("MCP_ENDPOINT", "wss://api.example.test/mcp/?token=abc")
	t.Setenv("RECONNECT_INITIAL_BACKOFF", "500ms")
	t.Setenv("RECONNECT_MAX_BACKOFF", "30s")
	t.Setenv("PROCESS_GRACE_PERIOD", "2s")
	t.Setenv("RELAY_DIAGNOSTICS_ENDS_SESSION", "false")
	t.Setenv("ADMIN_ENABLED", "true")
	t.Setenv("ADMIN_ADDR", "0.0.0.0:9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "3")

	cfg, err := Load(Options{Command: []string{"server.py", "--verbose"}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Endpoint.URL != "wss://api.example.test/mcp/?token=abc" {
		t.Errorf("Endpoint.URL = %q", cfg.Endpoint.URL)
	}
	if cfg.Reconnect.InitialBackoff != 500*time.Millisecond {
		t.Errorf("Reconnect.InitialBackoff = %v, want 500ms", cfg.Reconnect.InitialBackoff)
	}
	if cfg.Reconnect.MaxBackoff != 30*time.Second {
		t.Errorf("Reconnect.MaxBackoff = %v, want 30s", cfg.Reconnect.MaxBackoff)
	}
	if cfg.Process.GracePeriod != 2*time.Second {
		t.Errorf("Process.GracePeriod = %v, want 2s", cfg.Process.GracePeriod)
	}
	if cfg.Relay.DiagnosticsEndsSession {
		t.Error("Relay.DiagnosticsEndsSession should be false")
	}
	if !cfg.Admin.Enabled || cfg.Admin.Addr != "0.0.0.0:9000" {
		t.Errorf("Admin = %+v", cfg.Admin)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Breaker.FailureThreshold != 3 {
		t.Errorf("Breaker.FailureThreshold = %d, want 3", cfg.Breaker.FailureThreshold)
	}
	if want := []string{"server.py", "--verbose"}; !reflect.DeepEqual(cfg.Process.Command, want) {
		t.Errorf("Process.Command = %v, want %v", cfg.Process.Command, want)
	}
}

func TestLoad_GracePeriodWithinShutdownTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("MCP_ENDPOINT", "ws://example.test")
	t.Setenv("PROCESS_GRACE_PERIOD", "20s")
	t.Setenv("SUPERVISOR_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load(Options{Command: []string{"server.py"}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Process.GracePeriod != 20*time.Second || cfg.Supervisor.ShutdownTimeout != 30*time.Second {
		t.Errorf("grace/shutdown = %v/%v, want 20s/30s", cfg.Process.GracePeriod, cfg.Supervisor.ShutdownTimeout)
	}
}

func TestLoad_LogLevelAliases(t *testing.T) {
	for _, level := range []string{"WARNING", " debug ", "off"} {
		t.Run(level, func(t *testing.T) {
			isolate(t)
			t.Setenv("MCP_ENDPOINT", "ws://example.test")
			t.Setenv("LOG_LEVEL", level)

			if _, err := Load(Options{Command: []string{"server.py"}}); err != nil {
				t.Errorf("Load() with LOG_LEVEL=%q error = %v", level, err)
			}
		})
	}
}

func TestLoad_CommandFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("MCP_ENDPOINT", "ws://localhost:8765")
	t.Setenv("MCP_COMMAND", "  node  server.js --stdio ")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []string{"node", "server.js", "--stdio"}; !reflect.DeepEqual(cfg.Process.Command, want) {
		t.Errorf("Process.Command = %v, want %v", cfg.Process.Command, want)
	}
}

func TestLoad_ArgumentsBeatEnvironmentCommand(t *testing.T) {
	isolate(t)
	t.Setenv("MCP_ENDPOINT", "ws://localhost:8765")
	t.Setenv("MCP_COMMAND", "node server.js")

	cfg, err := Load(Options{Command: []string{"calculator.py"}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []string{"calculator.py"}; !reflect.DeepEqual(cfg.Process.Command, want) {
		t.Errorf("Process.Command = %v, want %v", cfg.Process.Command, want)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "bridge.yaml", `
endpoint:
  url: wss://yaml.example.test/mcp
  ping_interval: 15s
  pong_wait: 45s
reconnect:
  max_backoff: 2m
process:
  command: ["python", "server.py"]
  grace_period: 3s
relay:
  inbound_rate: 50
`)

	cfg, err := Load(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Endpoint.URL != "wss://yaml.example.test/mcp" {
		t.Errorf("Endpoint.URL = %q", cfg.Endpoint.URL)
	}
	if cfg.Endpoint.PingInterval != 15*time.Second || cfg.Endpoint.PongWait != 45*time.Second {
		t.Errorf("keepalive = %v/%v, want 15s/45s", cfg.Endpoint.PingInterval, cfg.Endpoint.PongWait)
	}
	if cfg.Reconnect.MaxBackoff != 2*time.Minute {
		t.Errorf("Reconnect.MaxBackoff = %v, want 2m", cfg.Reconnect.MaxBackoff)
	}
	if cfg.Reconnect.InitialBackoff != time.Second {
		t.Errorf("unset keys should keep defaults, InitialBackoff = %v", cfg.Reconnect.InitialBackoff)
	}
	if want := []string{"python", "server.py"}; !reflect.DeepEqual(cfg.Process.Command, want) {
		t.Errorf("Process.Command = %v, want %v", cfg.Process.Command, want)
	}
	if cfg.Relay.InboundRate != 50 {
		t.Errorf("Relay.InboundRate = %v, want 50", cfg.Relay.InboundRate)
	}
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(Options{ConfigPath: filepath.Join(dir, "missing.yaml"), Command: []string{"x"}})
	if err == nil {
		t.Fatal("Load() should fail when an explicit config file is missing")
	}
}

func TestLoad_DotenvFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "MCP_ENDPOINT=ws://dotenv.example.test/mcp\nLOG_LEVEL=warn\nUNRELATED=1\n")

	cfg, err := Load(Options{Command: []string{"server.py"}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoint.URL != "ws://dotenv.example.test/mcp" {
		t.Errorf("Endpoint.URL = %q, want value from .env", cfg.Endpoint.URL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_EnvironmentBeatsDotenv(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "bridge.env", "MCP_ENDPOINT=ws://dotenv.example.test/mcp\nLOG_LEVEL=warn\n")
	t.Setenv("MCP_ENDPOINT", "wss://env.example.test/mcp")

	cfg, err := Load(Options{EnvFile: path, Command: []string{"server.py"}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoint.URL != "wss://env.example.test/mcp" {
		t.Errorf("Endpoint.URL = %q, want the environment value", cfg.Endpoint.URL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from the env file", cfg.Logging.Level)
	}
}

func TestLoad_MissingDotenvIgnored(t *testing.T) {
	dir := isolate(t)
	t.Setenv("MCP_ENDPOINT", "ws://localhost:1")

	if _, err := Load(Options{EnvFile: filepath.Join(dir, "nope.env"), Command: []string{"x"}}); err != nil {
		t.Fatalf("Load() error = %v, missing env file should be ignored", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"MCP_ENDPOINT", "endpoint.url"},
		{"RECONNECT_MAX_BACKOFF", "reconnect.max_backoff"},
		{"LOG_LEVEL", "logging.level"},
		{"ADMIN_ADDR", "admin.addr"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestProcessConfig_Argv(t *testing.T) {
	p := ProcessConfig{Command: []string{"server.py", "-v"}}
	if got := p.Argv(); !reflect.DeepEqual(got, []string{"server.py", "-v"}) {
		t.Errorf("Argv() = %v", got)
	}

	p.Interpreter = "python3"
	if got := p.Argv(); !reflect.DeepEqual(got, []string{"python3", "server.py", "-v"}) {
		t.Errorf("Argv() with interpreter = %v", got)
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"wss://api.example.test/mcp/?token=secret", "wss://api.example.test/mcp/?token=REDACTED"},
		{"ws://user:pass@localhost:8765/", "ws://REDACTED@localhost:8765/"},
		{"ws://localhost:8765", "ws://localhost:8765"},
		{"://bad", "[invalid url]"},
	}

	for _, tt := range tests {
		if got := RedactURL(tt.in); got != tt.want {
			t.Errorf("RedactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
