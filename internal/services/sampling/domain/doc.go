// Package domain translates MCP tool calls into sampling commands.
//
// The package is intentionally explicit about that mapping:
// - parse MCP tool input into sampler requests,
// - route calls to the sampling application service,
// - and surface structured outputs, with draw provenance, that MCP
//   clients can render.
//
// This keeps every draw auditable from protocol message -> sampler
// command -> journal record.
package domain
