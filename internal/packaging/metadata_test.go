package packaging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkrasnov/docureel/internal/llm"
	"github.com/dkrasnov/docureel/internal/logging"
	"github.com/dkrasnov/docureel/internal/model"
)

type stubProvider struct {
	response string
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) GenerateText(ctx context.Context, modelName, prompt string) (string, error) {
	return p.response, nil
}

func (p *stubProvider) GenerateJSON(ctx context.Context, modelName, prompt string) (string, error) {
	return p.response, nil
}

func newStubGenerator(response string) *Generator {
	retry := llm.NewRetryPolicy(0, time.Millisecond, 0, llm.IsQuotaError)
	client := llm.NewClient(&stubProvider{response: response}, "stub-model", nil, retry, logging.Discard())
	return NewGenerator(client, logging.Discard())
}

func testScript() *model.FullScript {
	return &model.FullScript{
		Title: "The Fusion Breakthrough",
		Topic: "fusion energy",
		Segments: []model.ScriptSegment{
			// 150 chars narrates for 10 seconds at the standard pace.
			{SegmentOrder: 1, NarrationText: "In December 2022, everything changed. " + strings.Repeat("x", 112)},
			{SegmentOrder: 2, NarrationText: "The road to that moment took fifty years of failed attempts and slow progress."},
		},
		SourcesBibliography: []string{"https://www.bbc.com/news/science-123"},
	}
}

func TestGenerateMetadata(t *testing.T) {
	gen := newStubGenerator(`{
		"titles": ["Fusion: The Impossible Dream Realized", "How We Cracked Fusion"],
		"description": "A documentary about the fusion milestone.",
		"tags": "fusion, energy, science"
	}`)

	meta, err := gen.Generate(context.Background(), testScript())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(meta.Titles) != 2 {
		t.Errorf("titles = %v", meta.Titles)
	}
	if meta.Tags != "fusion, energy, science" {
		t.Errorf("tags = %q", meta.Tags)
	}
	if !strings.Contains(meta.Description, "Chapters:") {
		t.Error("description missing chapter block")
	}
	if !strings.Contains(meta.Description, "https://www.bbc.com/news/science-123") {
		t.Error("description missing source list")
	}
}

func TestGenerateFallsBackToScriptTitle(t *testing.T) {
	gen := newStubGenerator(`{"description": "d", "tags": "t"}`)

	meta, err := gen.Generate(context.Background(), testScript())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(meta.Titles) != 1 || meta.Titles[0] != "The Fusion Breakthrough" {
		t.Errorf("titles = %v, want script title fallback", meta.Titles)
	}
}

func TestChapters(t *testing.T) {
	chapters := Chapters(testScript())
	lines := strings.Split(strings.TrimSpace(chapters), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d chapter lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "00:00 ") {
		t.Errorf("first chapter = %q, want 00:00 prefix", lines[0])
	}
	// Second chapter starts after 150 chars of narration: 10 seconds.
	if !strings.HasPrefix(lines[1], "00:10 ") {
		t.Errorf("second chapter = %q, want 00:10 prefix", lines[1])
	}
	if strings.Contains(lines[0], "xx") {
		t.Errorf("label not cut at first sentence: %q", lines[0])
	}
	for _, line := range lines {
		label := line[len("00:00 "):]
		if len(label) > maxChapterLabelLength {
			t.Errorf("label %q exceeds %d chars", label, maxChapterLabelLength)
		}
	}
}

func TestWritePackage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	script := testScript()
	meta := &model.VideoMetadata{
		Titles:      []string{"A Title"},
		Description: "The description body.",
		Tags:        "a, b",
	}
	bundle := &model.EvidenceBundle{
		Topic:               "fusion energy",
		Items:               []model.EvidenceItem{{ID: "abc", Claim: "A claim of reasonable length.", SourceURL: "https://example.gov/x", SourceType: model.SourceGovernment, SourceCount: 1, Confidence: 0.9}},
		ProcessingTimestamp: "2026-08-28T10:00:00Z",
	}

	if err := WritePackage(dir, bundle, script, meta); err != nil {
		t.Fatalf("WritePackage failed: %v", err)
	}
	for _, name := range []string{"evidence.json", "script.json", "metadata.json", "description.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	// Research-only package writes just the bundle.
	dir2 := filepath.Join(t.TempDir(), "out2")
	if err := WritePackage(dir2, bundle, nil, nil); err != nil {
		t.Fatalf("WritePackage failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir2, "script.json")); err == nil {
		t.Error("script.json written for research-only package")
	}
}

func TestTopicSlug(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Fusion Energy", "fusion-energy"},
		{"  The  2022 Breakthrough!  ", "the-2022-breakthrough"},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		if got := TopicSlug(tt.topic); got != tt.want {
			t.Errorf("TopicSlug(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
