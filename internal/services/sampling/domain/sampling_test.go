package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/louisbranch/entropy.space/internal/services/sampling/app"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage"
)

type fakeJournal struct {
	records []storage.DrawRecord
}

func (f *fakeJournal) AppendDraw(_ context.Context, record storage.DrawRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeJournal) GetDraw(_ context.Context, id string) (storage.DrawRecord, error) {
	for _, record := range f.records {
		if record.ID == id {
			return record, nil
		}
	}
	return storage.DrawRecord{}, storage.ErrNotFound
}

func (f *fakeJournal) ListDraws(_ context.Context, filter storage.ListFilter) ([]storage.DrawRecord, error) {
	var out []storage.DrawRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if filter.Kind != "" && f.records[i].Kind != filter.Kind {
			continue
		}
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeJournal) Close() error { return nil }

func TestRollDiceHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := RollDiceHandler(app.NewSampler(&fakeJournal{}))
		toolResult, result, err := handler(context.Background(), nil, RollDiceInput{
			Dice: []RollDiceSpec{{Sides: 6, Count: 2}, {Sides: 20, Count: 1}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if toolResult == nil {
			t.Fatal("expected non-nil tool result")
		}
		if len(result.Rolls) != 2 {
			t.Fatalf("expected 2 rolls, got %d", len(result.Rolls))
		}
		if len(result.Rolls[0].Results) != 2 {
			t.Errorf("expected 2 d6 results, got %d", len(result.Rolls[0].Results))
		}
		if result.Draw.RngAlgo != app.Algorithm {
			t.Errorf("expected rng algo %q, got %q", app.Algorithm, result.Draw.RngAlgo)
		}
		if result.Draw.SeedSource != string(storage.SeedSourceServer) {
			t.Errorf("expected server seed source, got %q", result.Draw.SeedSource)
		}
	})

	t.Run("pinned seed replays", func(t *testing.T) {
		handler := RollDiceHandler(app.NewSampler(nil))
		seed := uint64(99)
		_, first, err := handler(context.Background(), nil, RollDiceInput{
			Dice: []RollDiceSpec{{Sides: 20, Count: 3}},
			Seed: &seed,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, second, err := handler(context.Background(), nil, RollDiceInput{
			Dice: []RollDiceSpec{{Sides: 20, Count: 3}},
			Seed: &seed,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Draw.SeedSource != string(storage.SeedSourceClient) {
			t.Errorf("expected client seed source, got %q", first.Draw.SeedSource)
		}
		for i := range first.Rolls[0].Results {
			if first.Rolls[0].Results[i] != second.Rolls[0].Results[i] {
				t.Fatalf("replay diverged at %d", i)
			}
		}
	})

	t.Run("missing dice", func(t *testing.T) {
		handler := RollDiceHandler(app.NewSampler(nil))
		_, _, err := handler(context.Background(), nil, RollDiceInput{})
		if err == nil {
			t.Fatal("expected error for empty dice")
		}
		if !strings.Contains(err.Error(), "DICE_MISSING") {
			t.Errorf("expected DICE_MISSING code in error, got %v", err)
		}
	})
}

func TestUniformIntHandler(t *testing.T) {
	t.Run("defaults count to one", func(t *testing.T) {
		handler := UniformIntHandler(app.NewSampler(nil))
		_, result, err := handler(context.Background(), nil, UniformIntInput{Low: 1, High: 6})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Values) != 1 {
			t.Fatalf("expected 1 value, got %d", len(result.Values))
		}
		if result.Values[0] < 1 || result.Values[0] > 6 {
			t.Errorf("value %d outside [1, 6]", result.Values[0])
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		handler := UniformIntHandler(app.NewSampler(nil))
		_, _, err := handler(context.Background(), nil, UniformIntInput{Low: 6, High: 1})
		if err == nil {
			t.Fatal("expected error for inverted range")
		}
		if !strings.Contains(err.Error(), "RANGE_INVALID") {
			t.Errorf("expected RANGE_INVALID code in error, got %v", err)
		}
	})

	t.Run("invalid count", func(t *testing.T) {
		handler := UniformIntHandler(app.NewSampler(nil))
		_, _, err := handler(context.Background(), nil, UniformIntInput{Low: 1, High: 6, Count: -1})
		if err == nil {
			t.Fatal("expected error for negative count")
		}
		if !strings.Contains(err.Error(), "COUNT_INVALID") {
			t.Errorf("expected COUNT_INVALID code in error, got %v", err)
		}
	})
}

func TestUniformRealHandler(t *testing.T) {
	handler := UniformRealHandler(app.NewSampler(nil))
	_, result, err := handler(context.Background(), nil, UniformRealInput{Low: -1, High: 1, Count: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Values) != 10 {
		t.Fatalf("expected 10 values, got %d", len(result.Values))
	}
	for i, v := range result.Values {
		if v < -1 || v > 1 {
			t.Errorf("value %d = %v outside [-1, 1]", i, v)
		}
	}
}

func TestProbabilityHandler(t *testing.T) {
	handler := ProbabilityHandler(app.NewSampler(nil))
	_, result, err := handler(context.Background(), nil, ProbabilityInput{Count: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range result.Values {
		if v < 0 || v > 1 {
			t.Errorf("value %d = %v outside [0, 1]", i, v)
		}
	}
}

func TestNormalHandler(t *testing.T) {
	handler := NormalHandler(app.NewSampler(nil))
	_, result, err := handler(context.Background(), nil, NormalInput{Mean: 100, Sigma: 0, Count: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range result.Values {
		if v != 100 {
			t.Errorf("value %d = %v, want exactly 100 with zero sigma", i, v)
		}
	}
}

func TestDrawHistoryHandler(t *testing.T) {
	journal := &fakeJournal{}
	sampler := app.NewSampler(journal)

	if _, _, err := ProbabilityHandler(sampler)(context.Background(), nil, ProbabilityInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := NormalHandler(sampler)(context.Background(), nil, NormalInput{Sigma: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := DrawHistoryHandler(sampler)
	_, result, err := handler(context.Background(), nil, DrawHistoryInput{Kind: "normal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Draws) != 1 {
		t.Fatalf("expected 1 normal draw, got %d", len(result.Draws))
	}
	if result.Draws[0].Kind != "normal" {
		t.Errorf("expected kind normal, got %q", result.Draws[0].Kind)
	}
	if result.Draws[0].Payload == "" {
		t.Error("expected non-empty payload")
	}
}

func TestDrawGetHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		journal := &fakeJournal{}
		sampler := app.NewSampler(journal)
		_, rolled, err := RollDiceHandler(sampler)(context.Background(), nil, RollDiceInput{
			Dice: []RollDiceSpec{{Sides: 6, Count: 1}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		handler := DrawGetHandler(sampler)
		_, result, err := handler(context.Background(), nil, DrawGetInput{DrawID: rolled.Draw.DrawID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Draw.DrawID != rolled.Draw.DrawID {
			t.Errorf("expected draw %q, got %q", rolled.Draw.DrawID, result.Draw.DrawID)
		}
		if result.Draw.SeedUsed != rolled.Draw.SeedUsed {
			t.Errorf("expected seed %d, got %d", rolled.Draw.SeedUsed, result.Draw.SeedUsed)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		handler := DrawGetHandler(app.NewSampler(nil))
		if _, _, err := handler(context.Background(), nil, DrawGetInput{}); err == nil {
			t.Fatal("expected error for missing draw_id")
		}
	})

	t.Run("not found", func(t *testing.T) {
		handler := DrawGetHandler(app.NewSampler(&fakeJournal{}))
		_, _, err := handler(context.Background(), nil, DrawGetInput{DrawID: "missing"})
		if err == nil {
			t.Fatal("expected error for unknown draw")
		}
		if !strings.Contains(err.Error(), "NOT_FOUND") {
			t.Errorf("expected NOT_FOUND code in error, got %v", err)
		}
	})
}
