// Package server implements the MCP (Model Context Protocol) server that
// turns keypoint annotations into density maps.
//
// The server exposes the density synthesizer, its kernel and radius
// helpers, and .npy persistence as MCP tools, so annotation front-ends and
// reprocessing scripts can drive it over a single stdio connection.
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
// Image Information:
//   - image_dimensions: Width and height of an annotated frame
//
// Kernel Operations:
//   - density_kernel: Normalized Gaussian footprint for a radius
//   - density_radii: Adaptive radius per point
//
// Density Synthesis:
//   - density_generate: Points to density map, with optional .npy + sidecar output
//   - density_draw: Explicit footprints with add/max overlap
//   - density_batch: Several frames in parallel
//   - density_inspect: Summarize a saved .npy map
//
// # Configuration
//
// Defaults come from the environment (see LoadConfig):
//   - DENSITY_MCP_LOG_LEVEL=debug logs each request to stderr
//   - DENSITY_MCP_MAX_SCALE and DENSITY_MCP_MAX_RADIUS set the adaptive
//     radius bounds used when a call does not pass max_scale/max_radius
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// An unsupported overlap mode in density_draw is a tool execution failure;
// no partial map is returned.
//
// # Usage
//
//	cfg, err := server.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
