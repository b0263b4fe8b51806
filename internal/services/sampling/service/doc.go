// Package service wires protocol transport to the sampling domain.
//
// It is the transport adapter layer: the package knows how to run MCP
// over stdio or HTTP and delegates draw semantics to the domain
// handlers.
package service
