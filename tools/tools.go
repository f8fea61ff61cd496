//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are invoked via `go run` or installed globally and are not
// imported by the portal itself.
package tools

// Development tools:
//
// mockgen - Gateway and cache repository mocks in internal/mocks
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock v0.6.0 (pinned in go.mod)
//   Docs: https://github.com/uber-go/mock
//
// Air - Live reload for the portal binary
//   Install: go install github.com/air-verse/air@v1.63.0
//   Version: v1.63.0 (pinned 2025-01-01)
//   Docs: https://github.com/air-verse/air
