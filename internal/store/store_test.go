package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dkrasnov/docureel/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testBundle(topic string) *model.EvidenceBundle {
	return &model.EvidenceBundle{
		Topic: topic,
		Items: []model.EvidenceItem{
			{
				ID:              model.ClaimID("The reactor produced 3.15 megajoules of energy."),
				Claim:           "The reactor produced 3.15 megajoules of energy.",
				SourceURL:       "https://www.bbc.com/news/science-123",
				SourceType:      model.SourceNewsMajor,
				RetrievedAt:     "2026-08-28",
				SourceCount:     1,
				SourceDiversity: []model.SourceType{model.SourceNewsMajor},
				Confidence:      0.9,
			},
		},
		RejectedClaimsCount: 1,
		ProcessingTimestamp: "2026-08-28T10:00:00Z",
	}
}

func TestSaveAndLoadBundle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveBundle(ctx, testBundle("fusion energy"))
	if err != nil {
		t.Fatalf("SaveBundle failed: %v", err)
	}
	if id == "" {
		t.Fatal("empty run ID")
	}

	loaded, err := s.LoadBundle(ctx, id)
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}
	if loaded.Topic != "fusion energy" || len(loaded.Items) != 1 {
		t.Errorf("round-trip mismatch: topic=%q items=%d", loaded.Topic, len(loaded.Items))
	}
	if loaded.Items[0].Claim != testBundle("fusion energy").Items[0].Claim {
		t.Errorf("claim mangled: %q", loaded.Items[0].Claim)
	}
}

func TestLoadBundleNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadBundle(context.Background(), "no-such-run"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
}

func TestSaveAndLoadScript(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveBundle(ctx, testBundle("fusion energy"))
	if err != nil {
		t.Fatalf("SaveBundle failed: %v", err)
	}

	// No script attached yet.
	if _, err := s.LoadScript(ctx, id); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound before script exists", err)
	}

	script := &model.FullScript{
		Title: "The Fusion Breakthrough",
		Topic: "fusion energy",
		Segments: []model.ScriptSegment{
			{SegmentOrder: 1, NarrationText: "In December 2022, everything changed."},
		},
	}
	if err := s.SaveScript(ctx, id, script); err != nil {
		t.Fatalf("SaveScript failed: %v", err)
	}

	loaded, err := s.LoadScript(ctx, id)
	if err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	if loaded.Title != script.Title || len(loaded.Segments) != 1 {
		t.Errorf("script round-trip mismatch: %+v", loaded)
	}

	if err := s.SaveScript(ctx, "no-such-run", script); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound for unknown run", err)
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveBundle(ctx, testBundle("topic one"))
	if err != nil {
		t.Fatalf("SaveBundle failed: %v", err)
	}
	second, err := s.SaveBundle(ctx, testBundle("topic two"))
	if err != nil {
		t.Fatalf("SaveBundle failed: %v", err)
	}

	runs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[first] || !ids[second] {
		t.Errorf("listing missing saved runs: %v", runs)
	}
	for _, run := range runs {
		if run.ItemsCount != 1 {
			t.Errorf("run %s items_count = %d, want 1", run.ID, run.ItemsCount)
		}
		if run.HasScript {
			t.Errorf("run %s reports a script it does not have", run.ID)
		}
		if run.CreatedAt.IsZero() {
			t.Errorf("run %s has zero timestamp", run.ID)
		}
	}
}
