package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SourceType classifies the credibility category of an evidence source.
// Values are assigned exclusively by the credibility classifier; the
// fact extractor never invents them.
type SourceType string

const (
	SourceGovernment   SourceType = "government"   // .gov, .mil and friends
	SourceEducation    SourceType = "education"    // .edu, .ac.* institutions
	SourceEncyclopedia SourceType = "encyclopedia" // wikipedia.org, britannica.com, ...
	SourceNewsMajor    SourceType = "major_news"   // wire services and major outlets
	SourceOtherTrusted SourceType = "trusted"      // allow-listed industry/science sites
)

// EvidenceItem is a single atomic factual claim tied to exactly one
// source URL at creation time. Immutable once built, except for the
// corroboration counters which the orchestrator's merge-dedup updates
// before the bundle is sealed.
type EvidenceItem struct {
	ID          string     `json:"id"`         // Deterministic hash of the claim text
	Claim       string     `json:"claim"`      // The factual statement itself
	SourceURL   string     `json:"source_url"` // Direct link to the source
	SourceType  SourceType `json:"source_type"`
	RetrievedAt string     `json:"retrieved_at"` // Date of extraction (YYYY-MM-DD)

	// Corroboration metadata
	SourceCount     int          `json:"source_count"`     // Distinct sources backing this claim
	SourceDiversity []SourceType `json:"source_diversity"` // Distinct source categories observed
	Confidence      float64      `json:"confidence"`       // Model-assigned, 0.0-1.0

	OriginalSnippet string `json:"original_text_snippet,omitempty"`
}

// MinClaimLength is the shortest claim accepted into a bundle.
const MinClaimLength = 10

// ClaimID derives the deterministic content-hash identifier for a claim.
// Stable across runs for identical text, so downstream script segments
// can cite evidence by ID.
func ClaimID(claim string) string {
	sum := sha256.Sum256([]byte(claim))
	return hex.EncodeToString(sum[:])[:12]
}

// ClaimFingerprint normalizes a claim (lowercase, trimmed) and hashes it.
// Two claims differing only in case or surrounding whitespace collide,
// which is what global deduplication keys on.
func ClaimFingerprint(claim string) string {
	normalized := strings.ToLower(strings.TrimSpace(claim))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Validate checks the field constraints an item must satisfy before it
// may enter a bundle.
func (e *EvidenceItem) Validate() error {
	if len(strings.TrimSpace(e.Claim)) < MinClaimLength {
		return fmt.Errorf("claim too short (min %d chars): %q", MinClaimLength, e.Claim)
	}
	parsed, err := url.Parse(e.SourceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("malformed source URL: %q", e.SourceURL)
	}
	switch e.SourceType {
	case SourceGovernment, SourceEducation, SourceEncyclopedia, SourceNewsMajor, SourceOtherTrusted:
	default:
		return fmt.Errorf("unknown source type: %q", e.SourceType)
	}
	if e.Confidence < 0.0 || e.Confidence > 1.0 {
		return fmt.Errorf("confidence %.2f outside [0,1]", e.Confidence)
	}
	if e.SourceCount < 1 {
		return fmt.Errorf("source count %d below 1", e.SourceCount)
	}
	return nil
}

// EvidenceBundle is the terminal artifact of research for one topic:
// the complete, deduplicated claim set handed to script generation.
type EvidenceBundle struct {
	Topic               string         `json:"topic"`
	Items               []EvidenceItem `json:"items"`
	RejectedClaimsCount int            `json:"rejected_claims_count"`
	ProcessingTimestamp string         `json:"processing_timestamp"`
}

// NewEvidenceBundle seals a research run into a bundle. An empty item
// set is a hard failure, never a valid result.
func NewEvidenceBundle(topic string, items []EvidenceItem, rejected int) (*EvidenceBundle, error) {
	bundle := &EvidenceBundle{
		Topic:               topic,
		Items:               items,
		RejectedClaimsCount: rejected,
		ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// Validate enforces the non-empty invariant and per-item constraints.
func (b *EvidenceBundle) Validate() error {
	if b.Topic == "" {
		return fmt.Errorf("bundle topic is empty")
	}
	if len(b.Items) == 0 {
		return fmt.Errorf("evidence bundle cannot be empty: research produced no items for %q", b.Topic)
	}
	for i := range b.Items {
		if err := b.Items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
