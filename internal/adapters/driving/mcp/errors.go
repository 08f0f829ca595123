// Package mcp provides an MCP (Model Context Protocol) server adapter for Tala.
// It lets AI assistants query the travel knowledge base and inspect
// ingested documents.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// errUnavailable is returned by tools whose port was not provided.
var errUnavailable = errors.New("mcp: tool not available in this configuration")
