// Package storage defines persistence contracts for the sampling
// service's draw journal.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DrawKind identifies the distribution a draw sampled from.
type DrawKind string

const (
	DrawKindDice        DrawKind = "dice"
	DrawKindUniformInt  DrawKind = "uniform_int"
	DrawKindUniformReal DrawKind = "uniform_real"
	DrawKindProbability DrawKind = "probability"
	DrawKindNormal      DrawKind = "normal"
)

// SeedSource identifies who supplied the seed for a draw.
type SeedSource string

const (
	// SeedSourceServer marks seeds generated from the host entropy source.
	SeedSourceServer SeedSource = "server"
	// SeedSourceClient marks seeds pinned by the caller for replays.
	SeedSourceClient SeedSource = "client"
)

// DrawRecord captures one completed draw so it can be audited and
// replayed from its seed.
type DrawRecord struct {
	ID         string
	Kind       DrawKind
	Seed       uint64
	SeedSource SeedSource
	// Payload holds a JSON summary of the request and its results.
	Payload   string
	CreatedAt time.Time
}

// ListFilter narrows and bounds journal listings.
type ListFilter struct {
	// Kind filters by draw kind when non-empty.
	Kind DrawKind
	// Limit caps the number of records returned; implementations apply
	// a default when it is zero or negative.
	Limit int
}

// Journal records completed draws in insertion order.
type Journal interface {
	AppendDraw(ctx context.Context, record DrawRecord) error
	GetDraw(ctx context.Context, id string) (DrawRecord, error)
	ListDraws(ctx context.Context, filter ListFilter) ([]DrawRecord, error)
	Close() error
}
