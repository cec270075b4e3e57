package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dkrasnov/docureel/internal/llm"
	"github.com/dkrasnov/docureel/internal/model"
)

const extractionPromptTemplate = `You are a strict fact extraction engine.
Extract atomic, verifiable factual claims from the text below.

Rules:
- Each claim must be a single self-contained factual statement.
- Exclude opinions, speculation, marketing language and navigation text.
- Assign each claim a confidence between 0.0 and 1.0 reflecting how
  directly the text supports it.
- Respond ONLY with JSON: a list of objects with keys "claim" and
  "confidence", or an object {"claims": [...]} wrapping that list.

Source URL: %s

Text:
%s`

// extractedClaim is the model's answer shape for one claim.
type extractedClaim struct {
	Claim      string  `json:"claim"`
	Confidence float64 `json:"confidence"`
}

// FactExtractor turns cleaned page text into validated evidence items
// via an LLM call.
type FactExtractor struct {
	client   *llm.Client
	maxInput int
	logger   *slog.Logger
}

// NewFactExtractor creates an extractor. maxInput caps the characters
// of page text sent per call.
func NewFactExtractor(client *llm.Client, maxInput int, logger *slog.Logger) *FactExtractor {
	if maxInput <= 0 {
		maxInput = 10_000
	}
	return &FactExtractor{client: client, maxInput: maxInput, logger: logger}
}

// Extract returns the validated evidence items found in text, the count
// of claims the model produced that failed validation, and an error
// only for model-call failures. An unparsable model response is treated
// as zero claims, not an error.
func (x *FactExtractor) Extract(ctx context.Context, text, sourceURL string, sourceType model.SourceType) ([]model.EvidenceItem, int, error) {
	text = truncateText(text, x.maxInput)

	prompt := fmt.Sprintf(extractionPromptTemplate, sourceURL, text)
	raw, err := x.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, 0, fmt.Errorf("extract facts from %s: %w", sourceURL, err)
	}

	claims, ok := parseClaims(raw)
	if !ok {
		x.logger.Warn("unparsable extraction response", "url", sourceURL)
		return nil, 0, nil
	}

	retrievedAt := time.Now().UTC().Format("2006-01-02")
	var items []model.EvidenceItem
	rejected := 0
	for _, c := range claims {
		claim := strings.TrimSpace(c.Claim)
		item := model.EvidenceItem{
			ID:              model.ClaimID(claim),
			Claim:           claim,
			SourceURL:       sourceURL,
			SourceType:      sourceType,
			RetrievedAt:     retrievedAt,
			SourceCount:     1,
			SourceDiversity: []model.SourceType{sourceType},
			Confidence:      c.Confidence,
		}
		if err := item.Validate(); err != nil {
			rejected++
			x.logger.Debug("rejected extracted claim", "url", sourceURL, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, rejected, nil
}

// parseClaims accepts either a bare JSON list of claims or an object
// wrapping the list under "claims". The wrapped form exists because
// some backends only emit top-level objects in JSON mode.
func parseClaims(raw string) ([]extractedClaim, bool) {
	raw = strings.TrimSpace(raw)

	var list []extractedClaim
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list, true
	}

	var wrapped struct {
		Claims []extractedClaim `json:"claims"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Claims != nil {
		return wrapped.Claims, true
	}
	return nil, false
}
