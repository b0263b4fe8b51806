package service

import (
	"fmt"

	"github.com/louisbranch/entropy.space/internal/services/sampling/app"
	"github.com/louisbranch/entropy.space/internal/services/sampling/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "entropy.space MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // HTTP server address. Defaults to localhost:8081 for HTTP transport.
}

// Server hosts the sampling MCP server.
type Server struct {
	mcpServer *mcp.Server
	sampler   *app.Sampler
}

// New creates a configured MCP server with all sampling tools bound to
// the provided sampler.
func New(sampler *app.Sampler) (*Server, error) {
	if sampler == nil {
		return nil, fmt.Errorf("sampler is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerSamplingTools(mcpServer, sampler)

	return &Server{mcpServer: mcpServer, sampler: sampler}, nil
}

// registerSamplingTools binds every sampling tool to the server.
func registerSamplingTools(server *mcp.Server, sampler *app.Sampler) {
	mcp.AddTool(server, domain.RollDiceTool(), domain.RollDiceHandler(sampler))
	mcp.AddTool(server, domain.UniformIntTool(), domain.UniformIntHandler(sampler))
	mcp.AddTool(server, domain.UniformRealTool(), domain.UniformRealHandler(sampler))
	mcp.AddTool(server, domain.ProbabilityTool(), domain.ProbabilityHandler(sampler))
	mcp.AddTool(server, domain.NormalTool(), domain.NormalHandler(sampler))
	mcp.AddTool(server, domain.DrawHistoryTool(), domain.DrawHistoryHandler(sampler))
	mcp.AddTool(server, domain.DrawGetTool(), domain.DrawGetHandler(sampler))
}
