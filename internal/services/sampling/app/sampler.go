// Package app hosts the sampling runtime shared by the MCP surface and
// the roll CLI. Every draw is seeded explicitly, executed on its own
// generator, and journaled so it can be replayed from the recorded seed.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/entropy.space/internal/core/dice"
	"github.com/louisbranch/entropy.space/internal/platform/id"
	"github.com/louisbranch/entropy.space/internal/random"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Algorithm identifies the engine behind every draw.
const Algorithm = "mt19937"

// maxDrawSamples bounds a single draw so one request cannot pin the
// service generating values.
const maxDrawSamples = 10000

// ErrInvalidCount indicates a sample count outside [1, maxDrawSamples].
var ErrInvalidCount = errors.New("sample count must be between 1 and 10000")

// DrawMeta describes how a draw was produced.
type DrawMeta struct {
	DrawID     string
	Seed       uint64
	SeedSource storage.SeedSource
	Algorithm  string
}

// Sampler executes seeded draws and records them to the journal.
// Each draw owns a private generator, which keeps the underlying
// engine's single-owner contract without any locking.
type Sampler struct {
	journal  storage.Journal
	seedFunc func() (uint64, error)
	newID    func() (string, error)
	clock    func() time.Time
	tracer   trace.Tracer
}

// NewSampler creates a sampler backed by the provided journal. A nil
// journal disables draw recording, which is useful for local CLI use.
func NewSampler(journal storage.Journal) *Sampler {
	return &Sampler{
		journal:  journal,
		seedFunc: random.NewSeed,
		newID:    id.NewID,
		clock:    time.Now,
		tracer:   otel.Tracer("entropy.space/sampling"),
	}
}

// UniformIntRequest asks for integers in the closed range [Low, High].
type UniformIntRequest struct {
	Low   int64
	High  int64
	Count int
	Seed  *uint64
}

// UniformRealRequest asks for reals in the closed interval [Low, High].
type UniformRealRequest struct {
	Low   float64
	High  float64
	Count int
	Seed  *uint64
}

// NormalRequest asks for normally distributed values.
type NormalRequest struct {
	Mean  float64
	Sigma float64
	Count int
	Seed  *uint64
}

// RollDice rolls the given dice pools. A nil seed draws a fresh server
// seed; a non-nil seed pins the roll for deterministic replay.
func (s *Sampler) RollDice(ctx context.Context, specs []dice.Spec, seed *uint64) (dice.Result, DrawMeta, error) {
	ctx, span := s.startSpan(ctx, "sampler.roll_dice", storage.DrawKindDice, len(specs))
	defer span.End()

	if err := validateDiceCount(specs); err != nil {
		return dice.Result{}, DrawMeta{}, s.fail(span, err)
	}
	resolved, source, err := s.resolveSeed(seed)
	if err != nil {
		return dice.Result{}, DrawMeta{}, s.fail(span, err)
	}

	result, err := dice.RollDice(dice.Request{Dice: specs, Seed: resolved})
	if err != nil {
		return dice.Result{}, DrawMeta{}, s.fail(span, err)
	}

	meta, err := s.record(ctx, storage.DrawKindDice, resolved, source, dicePayload{
		Dice:  specs,
		Rolls: result.Rolls,
		Total: result.Total,
	})
	if err != nil {
		return dice.Result{}, DrawMeta{}, s.fail(span, err)
	}
	return result, meta, nil
}

// UniformInts samples request.Count integers from [Low, High].
func (s *Sampler) UniformInts(ctx context.Context, request UniformIntRequest) ([]int64, DrawMeta, error) {
	ctx, span := s.startSpan(ctx, "sampler.uniform_ints", storage.DrawKindUniformInt, request.Count)
	defer span.End()

	if err := validateCount(request.Count); err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	resolved, source, err := s.resolveSeed(request.Seed)
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}

	gen := random.New(resolved)
	values := make([]int64, request.Count)
	for i := range values {
		values[i], err = random.UniformInt(gen, request.Low, request.High)
		if err != nil {
			return nil, DrawMeta{}, s.fail(span, err)
		}
	}

	meta, err := s.record(ctx, storage.DrawKindUniformInt, resolved, source, uniformIntPayload{
		Low:    request.Low,
		High:   request.High,
		Values: values,
	})
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	return values, meta, nil
}

// UniformReals samples request.Count reals from [Low, High].
func (s *Sampler) UniformReals(ctx context.Context, request UniformRealRequest) ([]float64, DrawMeta, error) {
	ctx, span := s.startSpan(ctx, "sampler.uniform_reals", storage.DrawKindUniformReal, request.Count)
	defer span.End()

	if err := validateCount(request.Count); err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	resolved, source, err := s.resolveSeed(request.Seed)
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}

	gen := random.New(resolved)
	values := make([]float64, request.Count)
	for i := range values {
		values[i], err = random.UniformReal(gen, request.Low, request.High)
		if err != nil {
			return nil, DrawMeta{}, s.fail(span, err)
		}
	}

	meta, err := s.record(ctx, storage.DrawKindUniformReal, resolved, source, uniformRealPayload{
		Low:    request.Low,
		High:   request.High,
		Values: values,
	})
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	return values, meta, nil
}

// Probabilities samples count values uniformly from [0.0, 1.0].
func (s *Sampler) Probabilities(ctx context.Context, count int, seed *uint64) ([]float64, DrawMeta, error) {
	ctx, span := s.startSpan(ctx, "sampler.probabilities", storage.DrawKindProbability, count)
	defer span.End()

	if err := validateCount(count); err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	resolved, source, err := s.resolveSeed(seed)
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}

	gen := random.New(resolved)
	values := make([]float64, count)
	for i := range values {
		values[i], err = gen.UniformProbability()
		if err != nil {
			return nil, DrawMeta{}, s.fail(span, err)
		}
	}

	meta, err := s.record(ctx, storage.DrawKindProbability, resolved, source, probabilityPayload{Values: values})
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	return values, meta, nil
}

// Normals samples request.Count values from a normal distribution.
func (s *Sampler) Normals(ctx context.Context, request NormalRequest) ([]float64, DrawMeta, error) {
	ctx, span := s.startSpan(ctx, "sampler.normals", storage.DrawKindNormal, request.Count)
	defer span.End()

	if err := validateCount(request.Count); err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	resolved, source, err := s.resolveSeed(request.Seed)
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}

	gen := random.New(resolved)
	values := make([]float64, request.Count)
	for i := range values {
		values[i], err = gen.NormalReal(request.Mean, request.Sigma)
		if err != nil {
			return nil, DrawMeta{}, s.fail(span, err)
		}
	}

	meta, err := s.record(ctx, storage.DrawKindNormal, resolved, source, normalPayload{
		Mean:   request.Mean,
		Sigma:  request.Sigma,
		Values: values,
	})
	if err != nil {
		return nil, DrawMeta{}, s.fail(span, err)
	}
	return values, meta, nil
}

// History lists journaled draws, newest first.
func (s *Sampler) History(ctx context.Context, filter storage.ListFilter) ([]storage.DrawRecord, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.ListDraws(ctx, filter)
}

// Draw fetches one journaled draw by id.
func (s *Sampler) Draw(ctx context.Context, drawID string) (storage.DrawRecord, error) {
	if s.journal == nil {
		return storage.DrawRecord{}, storage.ErrNotFound
	}
	return s.journal.GetDraw(ctx, drawID)
}

func (s *Sampler) resolveSeed(seed *uint64) (uint64, storage.SeedSource, error) {
	if seed != nil {
		return *seed, storage.SeedSourceClient, nil
	}
	value, err := s.seedFunc()
	if err != nil {
		return 0, "", fmt.Errorf("generate seed: %w", err)
	}
	return value, storage.SeedSourceServer, nil
}

// record journals the draw. Journal failures fail the draw: an
// unauditable draw is worse than a retried one.
func (s *Sampler) record(ctx context.Context, kind storage.DrawKind, seed uint64, source storage.SeedSource, payload any) (DrawMeta, error) {
	drawID, err := s.newID()
	if err != nil {
		return DrawMeta{}, fmt.Errorf("generate draw id: %w", err)
	}
	meta := DrawMeta{
		DrawID:     drawID,
		Seed:       seed,
		SeedSource: source,
		Algorithm:  Algorithm,
	}
	if s.journal == nil {
		return meta, nil
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return DrawMeta{}, fmt.Errorf("encode draw payload: %w", err)
	}
	if err := s.journal.AppendDraw(ctx, storage.DrawRecord{
		ID:         drawID,
		Kind:       kind,
		Seed:       seed,
		SeedSource: source,
		Payload:    string(encoded),
		CreatedAt:  s.clock().UTC(),
	}); err != nil {
		return DrawMeta{}, fmt.Errorf("journal draw: %w", err)
	}
	return meta, nil
}

func (s *Sampler) startSpan(ctx context.Context, name string, kind storage.DrawKind, count int) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("draw.kind", string(kind)),
		attribute.Int("draw.count", count),
	))
}

func (s *Sampler) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	return err
}

func validateCount(count int) error {
	if count < 1 || count > maxDrawSamples {
		return ErrInvalidCount
	}
	return nil
}

// validateDiceCount caps the total dice rolled in one draw. Non-positive
// spec counts are left for the dice package to reject; checking inside
// the loop keeps huge counts from overflowing the sum.
func validateDiceCount(specs []dice.Spec) error {
	total := 0
	for _, spec := range specs {
		if spec.Count > 0 {
			total += spec.Count
		}
		if total > maxDrawSamples {
			return ErrInvalidCount
		}
	}
	return nil
}

type dicePayload struct {
	Dice  []dice.Spec `json:"dice"`
	Rolls []dice.Roll `json:"rolls"`
	Total int         `json:"total"`
}

type uniformIntPayload struct {
	Low    int64   `json:"low"`
	High   int64   `json:"high"`
	Values []int64 `json:"values"`
}

type uniformRealPayload struct {
	Low    float64   `json:"low"`
	High   float64   `json:"high"`
	Values []float64 `json:"values"`
}

type probabilityPayload struct {
	Values []float64 `json:"values"`
}

type normalPayload struct {
	Mean   float64   `json:"mean"`
	Sigma  float64   `json:"sigma"`
	Values []float64 `json:"values"`
}
