// Package server implements the MCP (Model Context Protocol) server for
// spot-test sizing.
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
// Sample metadata:
//   - spot_parse_filename: Decode droplet diameter, trial, location and date
//   - spot_image_info: Dimensions and format of a scan
//
// Sizing:
//   - spot_size_particles: Residue diameters, aerodynamic diameters and
//     distribution summary, optionally with the contour overlay
//   - spot_aerodynamic_size: Physical to aerodynamic diameter
//
// Diagnostics:
//   - spot_edge_detect: The edge map the contour tracer sees
//
// Omitted optional arguments take their values from the server's
// config.Config. Rendering is always headless; the overlay is returned as a
// base64 PNG instead of opening a window.
//
// # Image Caching
//
// Scans are decoded once per location and kept for the lifetime of the
// process. Locations may be local paths or, when the server is given an
// S3-backed loader, s3://bucket/key URIs.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 when the tool rejects its arguments (unknown tool,
//     missing or mistyped fields, out-of-range thresholds or scale),
//     -32000 when the tool fails while running (unreadable scan, bad
//     filename, region outside the scan)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal("%v", err)
//	}
package server
