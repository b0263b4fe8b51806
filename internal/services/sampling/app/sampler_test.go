package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/entropy.space/internal/core/dice"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage"
	"go.opentelemetry.io/otel"
)

type memoryJournal struct {
	records   []storage.DrawRecord
	appendErr error
}

func (m *memoryJournal) AppendDraw(_ context.Context, record storage.DrawRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memoryJournal) GetDraw(_ context.Context, id string) (storage.DrawRecord, error) {
	for _, record := range m.records {
		if record.ID == id {
			return record, nil
		}
	}
	return storage.DrawRecord{}, storage.ErrNotFound
}

func (m *memoryJournal) ListDraws(_ context.Context, filter storage.ListFilter) ([]storage.DrawRecord, error) {
	var out []storage.DrawRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if filter.Kind != "" && m.records[i].Kind != filter.Kind {
			continue
		}
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memoryJournal) Close() error { return nil }

func newTestSampler(journal storage.Journal) *Sampler {
	n := 0
	return &Sampler{
		journal:  journal,
		seedFunc: func() (uint64, error) { return 42, nil },
		newID: func() (string, error) {
			n++
			return "draw-" + string(rune('a'+n-1)), nil
		},
		clock:  func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		tracer: otel.Tracer("test"),
	}
}

func TestRollDiceJournalsDraw(t *testing.T) {
	journal := &memoryJournal{}
	sampler := newTestSampler(journal)

	result, meta, err := sampler.RollDice(context.Background(), []dice.Spec{{Sides: 6, Count: 2}}, nil)
	if err != nil {
		t.Fatalf("RollDice() error = %v", err)
	}
	if len(result.Rolls) != 1 || len(result.Rolls[0].Results) != 2 {
		t.Fatalf("RollDice() rolls = %+v, want one spec with two results", result.Rolls)
	}
	if meta.Seed != 42 || meta.SeedSource != storage.SeedSourceServer {
		t.Fatalf("meta = %+v, want server seed 42", meta)
	}
	if meta.Algorithm != Algorithm {
		t.Fatalf("meta.Algorithm = %q, want %q", meta.Algorithm, Algorithm)
	}

	if len(journal.records) != 1 {
		t.Fatalf("journal records = %d, want 1", len(journal.records))
	}
	record := journal.records[0]
	if record.Kind != storage.DrawKindDice {
		t.Fatalf("record.Kind = %q, want %q", record.Kind, storage.DrawKindDice)
	}
	if record.ID != meta.DrawID {
		t.Fatalf("record.ID = %q, want %q", record.ID, meta.DrawID)
	}

	var payload struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(record.Payload), &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload.Total != result.Total {
		t.Fatalf("payload total = %d, want %d", payload.Total, result.Total)
	}
}

func TestRollDiceCapsTotalCount(t *testing.T) {
	journal := &memoryJournal{}
	sampler := newTestSampler(journal)
	ctx := context.Background()

	if _, _, err := sampler.RollDice(ctx, []dice.Spec{{Sides: 6, Count: 1000000}}, nil); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("oversized pool error = %v, want ErrInvalidCount", err)
	}
	specs := []dice.Spec{{Sides: 6, Count: maxDrawSamples / 2}, {Sides: 20, Count: maxDrawSamples/2 + 1}}
	if _, _, err := sampler.RollDice(ctx, specs, nil); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("oversized multi-spec error = %v, want ErrInvalidCount", err)
	}
	if len(journal.records) != 0 {
		t.Fatalf("journal records = %d, want none for rejected draws", len(journal.records))
	}

	if _, _, err := sampler.RollDice(ctx, []dice.Spec{{Sides: 6, Count: maxDrawSamples}}, nil); err != nil {
		t.Fatalf("RollDice() at the cap error = %v", err)
	}
}

func TestPinnedSeedReplaysDraw(t *testing.T) {
	sampler := newTestSampler(&memoryJournal{})
	seed := uint64(20260301)

	first, meta, err := sampler.UniformInts(context.Background(), UniformIntRequest{Low: 1, High: 100, Count: 5, Seed: &seed})
	if err != nil {
		t.Fatalf("UniformInts() error = %v", err)
	}
	if meta.SeedSource != storage.SeedSourceClient || meta.Seed != seed {
		t.Fatalf("meta = %+v, want pinned client seed", meta)
	}

	second, _, err := sampler.UniformInts(context.Background(), UniformIntRequest{Low: 1, High: 100, Count: 5, Seed: &seed})
	if err != nil {
		t.Fatalf("UniformInts() replay error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("replay diverged at %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestUniformIntsValidatesInput(t *testing.T) {
	sampler := newTestSampler(&memoryJournal{})

	if _, _, err := sampler.UniformInts(context.Background(), UniformIntRequest{Low: 1, High: 6, Count: 0}); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("count 0 error = %v, want ErrInvalidCount", err)
	}
	if _, _, err := sampler.UniformInts(context.Background(), UniformIntRequest{Low: 1, High: 6, Count: maxDrawSamples + 1}); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("oversized count error = %v, want ErrInvalidCount", err)
	}
	if _, _, err := sampler.UniformInts(context.Background(), UniformIntRequest{Low: 6, High: 1, Count: 1}); err == nil {
		t.Fatal("inverted range expected error, got nil")
	}
}

func TestUniformRealsStayInRange(t *testing.T) {
	sampler := newTestSampler(&memoryJournal{})

	values, _, err := sampler.UniformReals(context.Background(), UniformRealRequest{Low: -2.5, High: 2.5, Count: 200})
	if err != nil {
		t.Fatalf("UniformReals() error = %v", err)
	}
	for i, v := range values {
		if v < -2.5 || v > 2.5 {
			t.Fatalf("value %d = %v outside [-2.5, 2.5]", i, v)
		}
	}
}

func TestProbabilitiesStayInUnitInterval(t *testing.T) {
	sampler := newTestSampler(&memoryJournal{})

	values, _, err := sampler.Probabilities(context.Background(), 100, nil)
	if err != nil {
		t.Fatalf("Probabilities() error = %v", err)
	}
	for i, v := range values {
		if v < 0 || v > 1 {
			t.Fatalf("value %d = %v outside [0, 1]", i, v)
		}
	}
}

func TestNormalsJournalKind(t *testing.T) {
	journal := &memoryJournal{}
	sampler := newTestSampler(journal)

	if _, _, err := sampler.Normals(context.Background(), NormalRequest{Mean: 10, Sigma: 3, Count: 4}); err != nil {
		t.Fatalf("Normals() error = %v", err)
	}
	if len(journal.records) != 1 || journal.records[0].Kind != storage.DrawKindNormal {
		t.Fatalf("records = %+v, want one normal draw", journal.records)
	}
}

func TestJournalFailureFailsDraw(t *testing.T) {
	boom := errors.New("disk full")
	sampler := newTestSampler(&memoryJournal{appendErr: boom})

	if _, _, err := sampler.Probabilities(context.Background(), 1, nil); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped journal failure", err)
	}
}

func TestNilJournalSkipsRecording(t *testing.T) {
	sampler := newTestSampler(nil)

	values, meta, err := sampler.Probabilities(context.Background(), 3, nil)
	if err != nil {
		t.Fatalf("Probabilities() error = %v", err)
	}
	if len(values) != 3 || meta.DrawID == "" {
		t.Fatalf("values = %v meta = %+v, want three values with draw id", values, meta)
	}

	if _, err := sampler.Draw(context.Background(), meta.DrawID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Draw() error = %v, want ErrNotFound", err)
	}
	history, err := sampler.History(context.Background(), storage.ListFilter{})
	if err != nil || history != nil {
		t.Fatalf("History() = %v, %v, want empty", history, err)
	}
}

func TestHistoryFiltersByKind(t *testing.T) {
	journal := &memoryJournal{}
	sampler := newTestSampler(journal)
	ctx := context.Background()

	if _, _, err := sampler.Probabilities(ctx, 1, nil); err != nil {
		t.Fatalf("Probabilities() error = %v", err)
	}
	if _, _, err := sampler.Normals(ctx, NormalRequest{Mean: 0, Sigma: 1, Count: 1}); err != nil {
		t.Fatalf("Normals() error = %v", err)
	}

	history, err := sampler.History(ctx, storage.ListFilter{Kind: storage.DrawKindNormal})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0].Kind != storage.DrawKindNormal {
		t.Fatalf("history = %+v, want one normal draw", history)
	}
}
