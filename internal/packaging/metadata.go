// Package packaging turns a finished script into an upload-ready
// metadata set: candidate titles, a chaptered description and SEO tags.
package packaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkrasnov/docureel/internal/llm"
	"github.com/dkrasnov/docureel/internal/model"
)

// narrationCharsPerSecond approximates a measured narration pace and
// drives chapter timestamp estimation.
const narrationCharsPerSecond = 15.0

// maxChapterLabelLength caps chapter labels in the description.
const maxChapterLabelLength = 40

const metadataPromptTemplate = `You are a YouTube strategist. For the
documentary script below, produce:
- "titles": 3 candidate video titles, best first, each under 70 characters
- "description": 2-3 engaging paragraphs summarizing the video
- "tags": 10-15 comma-separated SEO tags

Respond ONLY with JSON: {"titles": [...], "description": "...", "tags": "..."}.

Script title: %s
Topic: %s

Narration:
%s`

// Generator produces video metadata from scripts.
type Generator struct {
	client *llm.Client
	logger *slog.Logger
}

// NewGenerator creates a metadata generator.
func NewGenerator(client *llm.Client, logger *slog.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// Generate builds the metadata package for a script. Chapters and the
// source list are appended to the description mechanically so they
// never depend on model output.
func (g *Generator) Generate(ctx context.Context, script *model.FullScript) (*model.VideoMetadata, error) {
	if err := script.Validate(nil); err != nil {
		return nil, fmt.Errorf("refusing to package invalid script: %w", err)
	}

	prompt := fmt.Sprintf(metadataPromptTemplate, script.Title, script.Topic, narration(script))
	raw, err := g.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate metadata for %q: %w", script.Title, err)
	}

	var meta model.VideoMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("decode metadata response: %w", err)
	}
	if len(meta.Titles) == 0 {
		meta.Titles = []string{script.Title}
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(meta.Description))
	b.WriteString("\n\nChapters:\n")
	b.WriteString(Chapters(script))
	if len(script.SourcesBibliography) > 0 {
		b.WriteString("\nSources:\n")
		for _, src := range script.SourcesBibliography {
			b.WriteString(src)
			b.WriteByte('\n')
		}
	}
	meta.Description = b.String()

	g.logger.Info("metadata generated", "topic", script.Topic, "titles", len(meta.Titles))
	return &meta, nil
}

// Chapters renders the MM:SS chapter list estimated from narration
// length at the standard pace.
func Chapters(script *model.FullScript) string {
	var b strings.Builder
	elapsed := 0.0
	for _, seg := range script.Segments {
		fmt.Fprintf(&b, "%s %s\n", formatTimestamp(elapsed), chapterLabel(seg.NarrationText))
		elapsed += float64(len(seg.NarrationText)) / narrationCharsPerSecond
	}
	return b.String()
}

// chapterLabel takes the first sentence of a segment, capped at the
// label length.
func chapterLabel(narration string) string {
	label := strings.TrimSpace(narration)
	if i := strings.IndexAny(label, ".!?"); i > 0 {
		label = label[:i]
	}
	if len(label) > maxChapterLabelLength {
		label = strings.TrimSpace(label[:maxChapterLabelLength])
	}
	return label
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func narration(script *model.FullScript) string {
	var b strings.Builder
	for _, seg := range script.Segments {
		b.WriteString(seg.NarrationText)
		b.WriteByte('\n')
	}
	return b.String()
}
