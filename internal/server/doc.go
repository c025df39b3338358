// Package server implements the MCP (Model Context Protocol) server for the
// steganography tools.
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
// Cover inspection:
//   - stego_image_info: Dimensions, format and capacity at every bit depth
//   - stego_capacity: Capacity of a cover or of given dimensions
//   - stego_resize: Enlarge a cover to raise its capacity
//
// Embedding:
//   - stego_encode: Hide a message or raw bytes and write a lossless image
//   - stego_decode: Recover a hidden payload
//
// Analysis:
//   - stego_inspect_pixel: Bit-level view of one pixel
//   - stego_compare: Distortion between a cover and its stego image
//
// Parameters a request leaves unset (bits per channel, scale, filter, output
// format and directory) are taken from the server's config.Config.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process. Paths
// the server writes to are evicted so later calls see the new file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, e.g. "payload exceeds capacity: ..."
//
// # Logging
//
// Logs go to the slog.Logger given to New. Stdout carries only protocol
// messages.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg, cfg.Logger())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
