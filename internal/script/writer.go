// Package script turns an evidence bundle into a narrated documentary
// script whose every segment cites the evidence it rests on.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dkrasnov/docureel/internal/llm"
	"github.com/dkrasnov/docureel/internal/model"
)

const scriptPromptTemplate = `You are a documentary scriptwriter. Write an
engaging narrated script about: %s

Target duration: %.0f minutes of narration.

You may ONLY state facts from the evidence list below. Every segment
must cite the IDs of the evidence it uses in "evidence_refs". Open with
a hook, build a narrative arc and close with the future outlook.

Evidence:
%s

Respond ONLY with JSON:
{"title": "...", "segments": [{"segment_order": 1, "narration_text": "...",
"evidence_refs": ["..."], "visual_suggestion": "..."}]}`

// Writer generates scripts from evidence bundles.
type Writer struct {
	client        *llm.Client
	targetMinutes float64
	logger        *slog.Logger
}

// NewWriter creates a script writer targeting roughly targetMinutes of
// narration.
func NewWriter(client *llm.Client, targetMinutes float64, logger *slog.Logger) *Writer {
	if targetMinutes <= 0 {
		targetMinutes = 8
	}
	return &Writer{client: client, targetMinutes: targetMinutes, logger: logger}
}

// Generate produces a validated script for a bundle. The bundle's
// non-empty invariant is re-checked here because stored bundles pass
// through JSON on the way in.
func (w *Writer) Generate(ctx context.Context, bundle *model.EvidenceBundle) (*model.FullScript, error) {
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to script invalid bundle: %w", err)
	}

	prompt := fmt.Sprintf(scriptPromptTemplate, bundle.Topic, w.targetMinutes, formatEvidence(bundle.Items))
	raw, err := w.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate script for %q: %w", bundle.Topic, err)
	}

	var parsed struct {
		Title    string                `json:"title"`
		Segments []model.ScriptSegment `json:"segments"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode script response: %w", err)
	}

	script := &model.FullScript{
		Title:                 parsed.Title,
		Topic:                 bundle.Topic,
		TargetDurationMinutes: w.targetMinutes,
		Segments:              parsed.Segments,
		SourcesBibliography:   bibliography(bundle.Items),
	}

	known := make(map[string]bool, len(bundle.Items))
	for _, item := range bundle.Items {
		known[item.ID] = true
	}
	if err := script.Validate(known); err != nil {
		return nil, fmt.Errorf("model produced invalid script: %w", err)
	}

	w.logger.Info("script generated",
		"topic", bundle.Topic, "segments", len(script.Segments), "title", script.Title)
	return script, nil
}

// formatEvidence renders the bundle as the compact ID-claim listing the
// prompt embeds.
func formatEvidence(items []model.EvidenceItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- [%s] %s (source: %s, confidence %.2f, %d source(s))\n",
			item.ID, item.Claim, item.SourceType, item.Confidence, item.SourceCount)
	}
	return b.String()
}

// bibliography returns the distinct source URLs, sorted for stable
// output.
func bibliography(items []model.EvidenceItem) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, item := range items {
		if !seen[item.SourceURL] {
			seen[item.SourceURL] = true
			urls = append(urls, item.SourceURL)
		}
	}
	sort.Strings(urls)
	return urls
}
