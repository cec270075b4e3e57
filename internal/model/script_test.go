package model

import "testing"

func validScript() FullScript {
	return FullScript{
		Title:                 "The Fusion Breakthrough",
		Topic:                 "fusion energy",
		TargetDurationMinutes: 8,
		Segments: []ScriptSegment{
			{SegmentOrder: 1, NarrationText: "In December 2022, everything changed.", EvidenceRefs: []string{"abc123def456"}},
			{SegmentOrder: 2, NarrationText: "The road there took fifty years.", EvidenceRefs: nil},
		},
		SourcesBibliography: []string{"https://www.bbc.com/news/science-123"},
	}
}

func TestScriptValidate(t *testing.T) {
	known := map[string]bool{"abc123def456": true}

	script := validScript()
	if err := script.Validate(known); err != nil {
		t.Fatalf("valid script rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*FullScript)
	}{
		{"empty title", func(s *FullScript) { s.Title = "" }},
		{"no segments", func(s *FullScript) { s.Segments = nil }},
		{"empty narration", func(s *FullScript) { s.Segments[0].NarrationText = "" }},
		{"unknown evidence ref", func(s *FullScript) { s.Segments[0].EvidenceRefs = []string{"nonexistent"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := validScript()
			tt.mutate(&script)
			if err := script.Validate(known); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestScriptValidateNilKnownSkipsRefs(t *testing.T) {
	script := validScript()
	script.Segments[0].EvidenceRefs = []string{"anything-goes"}
	if err := script.Validate(nil); err != nil {
		t.Errorf("nil knownIDs must skip reference checks: %v", err)
	}
}
