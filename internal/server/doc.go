// Package server implements the MCP (Model Context Protocol) server for the
// image enhancer.
//
// The server exposes the enhancement pipeline as tools over JSON-RPC 2.0 so
// that MCP clients can enhance images and read the quality metrics.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load image and get metadata
//   - image_enhance: Enhance a file or inline image; returns metrics and PNG
//   - image_metrics: Score an existing original/enhanced pair
//   - image_algorithms: List algorithms, parameters and defaults
//
// # Image Caching
//
// Images loaded by path are cached as decoded grayscale planes and reused
// across tool calls. Writing to output_path evicts that path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Lines that are not valid JSON get a -32700 parse error with a null id.
//
// # Logging
//
// Logs go to stderr through zerolog; stdout carries only protocol traffic.
package server
