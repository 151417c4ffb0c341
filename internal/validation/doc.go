// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

// Package validation provides struct validation using go-playground/validator v10.
//
// The bridge validates exactly one thing with it: the loaded configuration.
// Field names in error messages come from koanf struct tags, so a failure on
// Config.Endpoint.URL is reported as "endpoint.url is required".
//
//	type ReconnectConfig struct {
//	    InitialBackoff time.Duration `koanf:"initial_backoff" validate:"gt=0"`
//	    Jitter         float64       `koanf:"jitter" validate:"gte=0,lte=1"`
//	}
//
//	if verr := validation.ValidateStruct(cfg); verr != nil {
//	    return fmt.Errorf("invalid configuration: %w", verr)
//	}
//
// The validator is a lazily built singleton; struct metadata is cached after
// the first call.
package validation
