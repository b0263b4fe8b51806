package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/entropy.space/internal/core/dice"
	apperrors "github.com/louisbranch/entropy.space/internal/errors"
	"github.com/louisbranch/entropy.space/internal/services/sampling/app"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DrawInfo reports how the server produced a draw.
type DrawInfo struct {
	DrawID     string `json:"draw_id" jsonschema:"journal identifier for the draw"`
	SeedUsed   uint64 `json:"seed_used" jsonschema:"seed value used by the server"`
	RngAlgo    string `json:"rng_algo" jsonschema:"rng algorithm identifier"`
	SeedSource string `json:"seed_source" jsonschema:"seed source (client or server)"`
}

// RollDiceSpec represents an MCP die specification for a roll.
type RollDiceSpec struct {
	Sides int `json:"sides" jsonschema:"number of sides for the die"`
	Count int `json:"count" jsonschema:"number of dice to roll"`
}

// RollDiceInput represents the MCP tool input for rolling dice.
type RollDiceInput struct {
	Dice []RollDiceSpec `json:"dice" jsonschema:"dice specifications to roll"`
	Seed *uint64        `json:"seed,omitempty" jsonschema:"optional seed for deterministic rolls"`
}

// RollDiceRoll represents the results for a single dice spec.
type RollDiceRoll struct {
	Sides   int   `json:"sides" jsonschema:"number of sides for the die"`
	Results []int `json:"results" jsonschema:"individual roll results"`
	Total   int   `json:"total" jsonschema:"sum of the roll results"`
}

// RollDiceResult represents the MCP tool output for rolling dice.
type RollDiceResult struct {
	Rolls []RollDiceRoll `json:"rolls" jsonschema:"results for each dice spec"`
	Total int            `json:"total" jsonschema:"sum of all roll totals"`
	Draw  DrawInfo       `json:"draw" jsonschema:"draw provenance details"`
}

// UniformIntInput represents the MCP tool input for uniform integers.
type UniformIntInput struct {
	Low   int64   `json:"low" jsonschema:"inclusive lower bound"`
	High  int64   `json:"high" jsonschema:"inclusive upper bound"`
	Count int     `json:"count,omitempty" jsonschema:"number of samples to draw (default 1)"`
	Seed  *uint64 `json:"seed,omitempty" jsonschema:"optional seed for deterministic draws"`
}

// UniformIntResult represents the MCP tool output for uniform integers.
type UniformIntResult struct {
	Values []int64  `json:"values" jsonschema:"sampled integers"`
	Draw   DrawInfo `json:"draw" jsonschema:"draw provenance details"`
}

// UniformRealInput represents the MCP tool input for uniform reals.
type UniformRealInput struct {
	Low   float64 `json:"low" jsonschema:"inclusive lower bound"`
	High  float64 `json:"high" jsonschema:"inclusive upper bound"`
	Count int     `json:"count,omitempty" jsonschema:"number of samples to draw (default 1)"`
	Seed  *uint64 `json:"seed,omitempty" jsonschema:"optional seed for deterministic draws"`
}

// UniformRealResult represents the MCP tool output for uniform reals.
type UniformRealResult struct {
	Values []float64 `json:"values" jsonschema:"sampled reals"`
	Draw   DrawInfo  `json:"draw" jsonschema:"draw provenance details"`
}

// ProbabilityInput represents the MCP tool input for unit-interval samples.
type ProbabilityInput struct {
	Count int     `json:"count,omitempty" jsonschema:"number of samples to draw (default 1)"`
	Seed  *uint64 `json:"seed,omitempty" jsonschema:"optional seed for deterministic draws"`
}

// ProbabilityResult represents the MCP tool output for unit-interval samples.
type ProbabilityResult struct {
	Values []float64 `json:"values" jsonschema:"sampled probabilities in [0, 1]"`
	Draw   DrawInfo  `json:"draw" jsonschema:"draw provenance details"`
}

// NormalInput represents the MCP tool input for normal samples.
type NormalInput struct {
	Mean  float64 `json:"mean" jsonschema:"distribution mean"`
	Sigma float64 `json:"sigma" jsonschema:"distribution standard deviation"`
	Count int     `json:"count,omitempty" jsonschema:"number of samples to draw (default 1)"`
	Seed  *uint64 `json:"seed,omitempty" jsonschema:"optional seed for deterministic draws"`
}

// NormalResult represents the MCP tool output for normal samples.
type NormalResult struct {
	Values []float64 `json:"values" jsonschema:"sampled values"`
	Draw   DrawInfo  `json:"draw" jsonschema:"draw provenance details"`
}

// DrawSummary represents one journaled draw.
type DrawSummary struct {
	DrawID     string `json:"draw_id" jsonschema:"journal identifier for the draw"`
	Kind       string `json:"kind" jsonschema:"draw kind"`
	SeedUsed   uint64 `json:"seed_used" jsonschema:"seed value used for the draw"`
	SeedSource string `json:"seed_source" jsonschema:"seed source (client or server)"`
	Payload    string `json:"payload" jsonschema:"JSON summary of the draw"`
	CreatedAt  string `json:"created_at" jsonschema:"draw timestamp in RFC 3339"`
}

// DrawHistoryInput represents the MCP tool input for listing draws.
type DrawHistoryInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"filter by draw kind"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of draws to return"`
}

// DrawHistoryResult represents the MCP tool output for listing draws.
type DrawHistoryResult struct {
	Draws []DrawSummary `json:"draws" jsonschema:"journaled draws, newest first"`
}

// DrawGetInput represents the MCP tool input for fetching one draw.
type DrawGetInput struct {
	DrawID string `json:"draw_id" jsonschema:"journal identifier for the draw"`
}

// DrawGetResult represents the MCP tool output for fetching one draw.
type DrawGetResult struct {
	Draw DrawSummary `json:"draw" jsonschema:"the journaled draw"`
}

// RollDiceTool defines the MCP tool schema for rolling dice.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls arbitrary dice pools",
	}
}

// UniformIntTool defines the MCP tool schema for uniform integers.
func UniformIntTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sample_uniform_int",
		Description: "Samples integers uniformly from a closed range",
	}
}

// UniformRealTool defines the MCP tool schema for uniform reals.
func UniformRealTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sample_uniform_real",
		Description: "Samples reals uniformly from a closed interval",
	}
}

// ProbabilityTool defines the MCP tool schema for unit-interval samples.
func ProbabilityTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sample_probability",
		Description: "Samples probabilities uniformly from [0, 1]",
	}
}

// NormalTool defines the MCP tool schema for normal samples.
func NormalTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sample_normal",
		Description: "Samples normally distributed values",
	}
}

// DrawHistoryTool defines the MCP tool schema for listing draws.
func DrawHistoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "draw_history",
		Description: "Lists journaled draws, newest first",
	}
}

// DrawGetTool defines the MCP tool schema for fetching one draw.
func DrawGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "draw_get",
		Description: "Fetches one journaled draw by id",
	}
}

// RollDiceHandler executes a dice roll.
func RollDiceHandler(sampler *app.Sampler) mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, RollDiceResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		specs := make([]dice.Spec, 0, len(input.Dice))
		for _, spec := range input.Dice {
			specs = append(specs, dice.Spec{Sides: spec.Sides, Count: spec.Count})
		}

		result, meta, err := sampler.RollDice(ctx, specs, input.Seed)
		if err != nil {
			return nil, RollDiceResult{}, toolError("dice roll", err)
		}

		rolls := make([]RollDiceRoll, 0, len(result.Rolls))
		for _, roll := range result.Rolls {
			rolls = append(rolls, RollDiceRoll{
				Sides:   roll.Sides,
				Results: roll.Results,
				Total:   roll.Total,
			})
		}

		return CallToolResultWithInvocation(invocationID), RollDiceResult{
			Rolls: rolls,
			Total: result.Total,
			Draw:  drawInfo(meta),
		}, nil
	}
}

// UniformIntHandler executes a uniform integer draw.
func UniformIntHandler(sampler *app.Sampler) mcp.ToolHandlerFor[UniformIntInput, UniformIntResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UniformIntInput) (*mcp.CallToolResult, UniformIntResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, UniformIntResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		values, meta, err := sampler.UniformInts(ctx, app.UniformIntRequest{
			Low:   input.Low,
			High:  input.High,
			Count: sampleCount(input.Count),
			Seed:  input.Seed,
		})
		if err != nil {
			return nil, UniformIntResult{}, toolError("uniform int draw", err)
		}

		return CallToolResultWithInvocation(invocationID), UniformIntResult{
			Values: values,
			Draw:   drawInfo(meta),
		}, nil
	}
}

// UniformRealHandler executes a uniform real draw.
func UniformRealHandler(sampler *app.Sampler) mcp.ToolHandlerFor[UniformRealInput, UniformRealResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UniformRealInput) (*mcp.CallToolResult, UniformRealResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, UniformRealResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		values, meta, err := sampler.UniformReals(ctx, app.UniformRealRequest{
			Low:   input.Low,
			High:  input.High,
			Count: sampleCount(input.Count),
			Seed:  input.Seed,
		})
		if err != nil {
			return nil, UniformRealResult{}, toolError("uniform real draw", err)
		}

		return CallToolResultWithInvocation(invocationID), UniformRealResult{
			Values: values,
			Draw:   drawInfo(meta),
		}, nil
	}
}

// ProbabilityHandler executes a unit-interval draw.
func ProbabilityHandler(sampler *app.Sampler) mcp.ToolHandlerFor[ProbabilityInput, ProbabilityResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProbabilityInput) (*mcp.CallToolResult, ProbabilityResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, ProbabilityResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		values, meta, err := sampler.Probabilities(ctx, sampleCount(input.Count), input.Seed)
		if err != nil {
			return nil, ProbabilityResult{}, toolError("probability draw", err)
		}

		return CallToolResultWithInvocation(invocationID), ProbabilityResult{
			Values: values,
			Draw:   drawInfo(meta),
		}, nil
	}
}

// NormalHandler executes a normal distribution draw.
func NormalHandler(sampler *app.Sampler) mcp.ToolHandlerFor[NormalInput, NormalResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NormalInput) (*mcp.CallToolResult, NormalResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, NormalResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		values, meta, err := sampler.Normals(ctx, app.NormalRequest{
			Mean:  input.Mean,
			Sigma: input.Sigma,
			Count: sampleCount(input.Count),
			Seed:  input.Seed,
		})
		if err != nil {
			return nil, NormalResult{}, toolError("normal draw", err)
		}

		return CallToolResultWithInvocation(invocationID), NormalResult{
			Values: values,
			Draw:   drawInfo(meta),
		}, nil
	}
}

// DrawHistoryHandler lists journaled draws.
func DrawHistoryHandler(sampler *app.Sampler) mcp.ToolHandlerFor[DrawHistoryInput, DrawHistoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DrawHistoryInput) (*mcp.CallToolResult, DrawHistoryResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, DrawHistoryResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		records, err := sampler.History(ctx, storage.ListFilter{
			Kind:  storage.DrawKind(input.Kind),
			Limit: input.Limit,
		})
		if err != nil {
			return nil, DrawHistoryResult{}, toolError("draw history", err)
		}

		draws := make([]DrawSummary, 0, len(records))
		for _, record := range records {
			draws = append(draws, drawSummary(record))
		}

		return CallToolResultWithInvocation(invocationID), DrawHistoryResult{Draws: draws}, nil
	}
}

// DrawGetHandler fetches one journaled draw.
func DrawGetHandler(sampler *app.Sampler) mcp.ToolHandlerFor[DrawGetInput, DrawGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DrawGetInput) (*mcp.CallToolResult, DrawGetResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, DrawGetResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		if input.DrawID == "" {
			return nil, DrawGetResult{}, fmt.Errorf("draw_id is required")
		}

		record, err := sampler.Draw(ctx, input.DrawID)
		if err != nil {
			return nil, DrawGetResult{}, toolError("draw get", err)
		}

		return CallToolResultWithInvocation(invocationID), DrawGetResult{Draw: drawSummary(record)}, nil
	}
}

// sampleCount applies the default draw size for omitted counts.
func sampleCount(count int) int {
	if count == 0 {
		return 1
	}
	return count
}

// toolError wraps a sampler error with the action and its stable code.
func toolError(action string, err error) error {
	if code := apperrors.CodeOf(err); code != apperrors.CodeUnknown {
		return fmt.Errorf("%s failed: %s: %w", action, code, err)
	}
	return fmt.Errorf("%s failed: %w", action, err)
}

func drawInfo(meta app.DrawMeta) DrawInfo {
	return DrawInfo{
		DrawID:     meta.DrawID,
		SeedUsed:   meta.Seed,
		RngAlgo:    meta.Algorithm,
		SeedSource: string(meta.SeedSource),
	}
}

func drawSummary(record storage.DrawRecord) DrawSummary {
	return DrawSummary{
		DrawID:     record.ID,
		Kind:       string(record.Kind),
		SeedUsed:   record.Seed,
		SeedSource: string(record.SeedSource),
		Payload:    record.Payload,
		CreatedAt:  record.CreatedAt.Format(time.RFC3339),
	}
}
