package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dkrasnov/docureel/internal/llm"
	"github.com/dkrasnov/docureel/internal/model"
)

// ErrNoEvidence signals that a full research run produced zero usable
// evidence items. Callers must treat this as a hard failure.
var ErrNoEvidence = errors.New("no evidence found")

// queryPlanner produces search queries for a topic.
type queryPlanner interface {
	Plan(ctx context.Context, topic string) []string
}

// pageTextFetcher returns cleaned page text, empty on failure.
type pageTextFetcher interface {
	Fetch(ctx context.Context, rawURL string) string
}

// factExtractor extracts validated evidence items from page text.
type factExtractor interface {
	Extract(ctx context.Context, text, sourceURL string, sourceType model.SourceType) ([]model.EvidenceItem, int, error)
}

// Orchestrator runs the full research flow for one topic: plan queries,
// search, filter sources through the credibility classifier, fetch and
// extract concurrently, then merge everything into one deduplicated
// bundle.
type Orchestrator struct {
	planner    queryPlanner
	search     SearchProvider
	classifier *Classifier
	fetcher    pageTextFetcher
	extractor  factExtractor
	cfg        model.ResearchConfig
	logger     *slog.Logger
}

// NewOrchestrator wires the research flow together.
func NewOrchestrator(planner queryPlanner, search SearchProvider, classifier *Classifier, fetcher pageTextFetcher, extractor factExtractor, cfg model.ResearchConfig, logger *slog.Logger) *Orchestrator {
	if cfg.URLsPerQuery <= 0 {
		cfg.URLsPerQuery = 3
	}
	return &Orchestrator{
		planner:    planner,
		search:     search,
		classifier: classifier,
		fetcher:    fetcher,
		extractor:  extractor,
		cfg:        cfg,
		logger:     logger,
	}
}

// queryOutcome accumulates one query's contribution. Failures inside a
// query zero its contribution; only model saturation is carried up.
type queryOutcome struct {
	items     []model.EvidenceItem
	rejected  int
	saturated error
}

// Research produces the evidence bundle for a topic. It fails only on
// model saturation or when the merged result is empty; every other
// per-query and per-URL failure degrades to a smaller bundle.
func (o *Orchestrator) Research(ctx context.Context, topic string) (*model.EvidenceBundle, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queries := o.planner.Plan(ctx, topic)
	o.logger.Info("research plan ready", "topic", topic, "queries", len(queries))

	outcomes := make([]queryOutcome, len(queries))
	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			outcomes[i] = o.runQuery(ctx, query)
			if outcomes[i].saturated != nil {
				cancel()
			}
		}(i, query)
	}
	wg.Wait()

	// Merge in query order so corroboration metadata is deterministic
	// for a given set of query results.
	merged := make(map[string]*model.EvidenceItem)
	seenSources := make(map[string]map[string]bool)
	var order []string
	rejected := 0
	for _, outcome := range outcomes {
		if outcome.saturated != nil {
			return nil, outcome.saturated
		}
		rejected += outcome.rejected
		for _, item := range outcome.items {
			fp := model.ClaimFingerprint(item.Claim)
			existing, ok := merged[fp]
			if !ok {
				copied := item
				merged[fp] = &copied
				seenSources[fp] = map[string]bool{item.SourceURL: true}
				order = append(order, fp)
				continue
			}
			o.corroborate(existing, seenSources[fp], item)
		}
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w for topic %q", ErrNoEvidence, topic)
	}

	items := make([]model.EvidenceItem, 0, len(order))
	for _, fp := range order {
		items = append(items, *merged[fp])
	}

	bundle, err := model.NewEvidenceBundle(topic, items, rejected)
	if err != nil {
		return nil, fmt.Errorf("seal bundle: %w", err)
	}
	o.logger.Info("research complete",
		"topic", topic, "items", len(items), "rejected", rejected)
	return bundle, nil
}

// runQuery searches one query, fetches its top credible URLs
// concurrently and extracts evidence from each page.
func (o *Orchestrator) runQuery(ctx context.Context, query string) queryOutcome {
	results, err := o.search.Search(ctx, query)
	if err != nil {
		o.logger.Warn("search failed, skipping query", "query", query, "error", err)
		return queryOutcome{}
	}

	// Classify every hit and keep the top credible URLs.
	type target struct {
		url        string
		sourceType model.SourceType
	}
	var targets []target
	for _, r := range results {
		sourceType, ok := o.classifier.Classify(r.URL)
		if !ok {
			if !o.cfg.AllowUnlisted {
				o.logger.Debug("dropping unclassified source", "url", r.URL)
				continue
			}
			sourceType = model.SourceOtherTrusted
		}
		targets = append(targets, target{url: r.URL, sourceType: sourceType})
		if len(targets) == o.cfg.URLsPerQuery {
			break
		}
	}

	perURL := make([]queryOutcome, len(targets))
	var wg sync.WaitGroup
	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()

			text := o.fetcher.Fetch(ctx, tgt.url)
			if len(text) < o.cfg.MinContentLength {
				o.logger.Debug("page too thin for extraction", "url", tgt.url, "chars", len(text))
				return
			}

			items, rej, err := o.extractor.Extract(ctx, text, tgt.url, tgt.sourceType)
			if err != nil {
				if errors.Is(err, llm.ErrSaturated) {
					perURL[i].saturated = err
					return
				}
				o.logger.Warn("extraction failed, skipping page", "url", tgt.url, "error", err)
				return
			}
			perURL[i] = queryOutcome{items: items, rejected: rej}
		}(i, tgt)
	}
	wg.Wait()

	var out queryOutcome
	for _, r := range perURL {
		if r.saturated != nil {
			out.saturated = r.saturated
			return out
		}
		out.items = append(out.items, r.items...)
		out.rejected += r.rejected
	}
	return out
}

// corroborate folds a duplicate claim into the already-merged item:
// bump the distinct-source count, record unseen source categories and
// keep the highest confidence. The first-seen claim text wins.
func (o *Orchestrator) corroborate(existing *model.EvidenceItem, sources map[string]bool, dup model.EvidenceItem) {
	if !sources[dup.SourceURL] {
		sources[dup.SourceURL] = true
		existing.SourceCount++
	}
	for _, st := range dup.SourceDiversity {
		if !containsType(existing.SourceDiversity, st) {
			existing.SourceDiversity = append(existing.SourceDiversity, st)
		}
	}
	if dup.Confidence > existing.Confidence {
		existing.Confidence = dup.Confidence
	}
}

func containsType(types []model.SourceType, t model.SourceType) bool {
	for _, existing := range types {
		if existing == t {
			return true
		}
	}
	return false
}
