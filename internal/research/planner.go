package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkrasnov/docureel/internal/llm"
)

const planningPromptTemplate = `You are a research planner for a documentary
about: %s

Produce search queries that together cover four angles:
1. Historical context and background
2. Technical or scientific detail
3. Economic and political dimensions
4. Future outlook and open questions

Respond ONLY with JSON: {"queries": ["...", "..."]}.`

// Planner decomposes a topic into angled search queries. Planning is
// best-effort: every failure falls back to deterministic generic
// queries, so research always has something to run.
type Planner struct {
	client     *llm.Client
	maxQueries int
	logger     *slog.Logger
}

// NewPlanner creates a planner capped at maxQueries queries per topic.
func NewPlanner(client *llm.Client, maxQueries int, logger *slog.Logger) *Planner {
	if maxQueries <= 0 {
		maxQueries = 5
	}
	return &Planner{client: client, maxQueries: maxQueries, logger: logger}
}

// Plan returns the search queries for a topic. Never fails.
func (p *Planner) Plan(ctx context.Context, topic string) []string {
	raw, err := p.client.GenerateJSON(ctx, fmt.Sprintf(planningPromptTemplate, topic))
	if err != nil {
		p.logger.Warn("query planning failed, using fallback queries", "topic", topic, "error", err)
		return FallbackPlan(topic)
	}

	var parsed struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		p.logger.Warn("unparsable planning response, using fallback queries", "topic", topic)
		return FallbackPlan(topic)
	}

	var queries []string
	for _, q := range parsed.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == p.maxQueries {
			break
		}
	}
	if len(queries) == 0 {
		p.logger.Warn("planning produced no queries, using fallback queries", "topic", topic)
		return FallbackPlan(topic)
	}
	return queries
}

// FallbackPlan is the deterministic query set used when planning fails.
func FallbackPlan(topic string) []string {
	return []string{
		topic + " history",
		topic + " analysis",
		topic + " statistics",
	}
}
