package model

import "fmt"

// ScriptSegment is one block of narration. Every segment must cite the
// evidence items its statements rest on by ID.
type ScriptSegment struct {
	SegmentOrder     int      `json:"segment_order"`
	NarrationText    string   `json:"narration_text"`
	EvidenceRefs     []string `json:"evidence_refs"`
	VisualSuggestion string   `json:"visual_suggestion,omitempty"`
}

// FullScript is the complete narrated video script produced from an
// evidence bundle.
type FullScript struct {
	Title                 string          `json:"title"`
	Topic                 string          `json:"topic"`
	TargetDurationMinutes float64         `json:"target_duration_minutes"`
	Segments              []ScriptSegment `json:"segments"`
	SourcesBibliography   []string        `json:"sources_bibliography"`
}

// Validate checks structural constraints and that every evidence
// reference resolves to an item present in the bundle the script was
// generated from. knownIDs may be nil to skip reference checking.
func (s *FullScript) Validate(knownIDs map[string]bool) error {
	if s.Title == "" {
		return fmt.Errorf("script title is empty")
	}
	if len(s.Segments) == 0 {
		return fmt.Errorf("script has no segments")
	}
	for _, seg := range s.Segments {
		if seg.NarrationText == "" {
			return fmt.Errorf("segment %d has empty narration", seg.SegmentOrder)
		}
		if knownIDs == nil {
			continue
		}
		for _, ref := range seg.EvidenceRefs {
			if !knownIDs[ref] {
				return fmt.Errorf("segment %d cites unknown evidence id %q", seg.SegmentOrder, ref)
			}
		}
	}
	return nil
}

// VideoMetadata is the upload-ready YouTube package generated from a
// finished script.
type VideoMetadata struct {
	Titles      []string `json:"titles"`      // Candidate titles, best first
	Description string   `json:"description"` // Includes chapter timestamps and sources
	Tags        string   `json:"tags"`        // Comma-separated SEO tags
}
