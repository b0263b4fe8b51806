package domain

import (
	"github.com/louisbranch/entropy.space/internal/platform/id"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// invocationIDMetaKey is the tool result metadata key for correlation ids.
const invocationIDMetaKey = "invocation-id"

// NewInvocationID generates an invocation identifier for a tool call.
func NewInvocationID() (string, error) {
	return id.NewID()
}

// CallToolResultWithInvocation builds a tool result carrying the
// invocation identifier so clients can correlate draws with journal
// records and traces.
func CallToolResultWithInvocation(invocationID string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Meta: map[string]any{
			invocationIDMetaKey: invocationID,
		},
	}
}
