// Package pipeline is the composition root: it assembles the research,
// scripting and packaging components from configuration.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dkrasnov/docureel/internal/cache"
	"github.com/dkrasnov/docureel/internal/llm"
	"github.com/dkrasnov/docureel/internal/model"
	"github.com/dkrasnov/docureel/internal/packaging"
	"github.com/dkrasnov/docureel/internal/research"
	"github.com/dkrasnov/docureel/internal/script"
	"github.com/dkrasnov/docureel/internal/util"
)

// Pipeline holds the fully wired stages. All model clients share one
// rate gate, so planning, extraction, scripting and metadata calls
// together never exceed the configured call rate.
type Pipeline struct {
	Orchestrator *research.Orchestrator
	Writer       *script.Writer
	Metadata     *packaging.Generator
	Logger       *slog.Logger
}

// New builds the pipeline from configuration.
func New(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	llmCfg := llm.ConfigFromModel(cfg.LLM)
	provider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create model provider: %w", err)
	}

	gate := llm.NewRateGate(llmCfg.MinInterval)
	retry := llm.NewRetryPolicy(llmCfg.MaxRetries, llmCfg.RetryBase, llmCfg.RetryJitter, llm.IsQuotaError)

	mainClient := llm.NewClient(provider, llmCfg.Model, gate, retry, logger)
	extractionModel := llmCfg.ExtractionModel
	if extractionModel == "" {
		extractionModel = llmCfg.Model
	}
	extractionClient := llm.NewClient(provider, extractionModel, gate, retry, logger)

	var pages cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			pages = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			pages = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		}
	}

	fetcher := research.NewPageFetcher(cfg.HTTP, cfg.Research, pages, cfg.Cache.TTL, logger)

	// Search requests carry the same per-request timeout as page
	// fetches; a stalled backend fails its query locally instead of
	// hanging the research run.
	searchTransport := http.DefaultTransport.(*http.Transport).Clone()
	searchTransport.Proxy = util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)
	searchClient := &http.Client{
		Timeout:   cfg.HTTP.Timeout,
		Transport: searchTransport,
	}
	search := research.NewDuckDuckGoSearch(searchClient, cfg.HTTP.UserAgent, cfg.Research.MaxSearchResults, "")
	planner := research.NewPlanner(mainClient, cfg.Research.MaxQueries, logger)
	extractor := research.NewFactExtractor(extractionClient, cfg.Research.MaxExtractionText, logger)
	classifier := research.NewClassifier(cfg.Trust)

	return &Pipeline{
		Orchestrator: research.NewOrchestrator(planner, search, classifier, fetcher, extractor, cfg.Research, logger),
		Writer:       script.NewWriter(mainClient, 8, logger),
		Metadata:     packaging.NewGenerator(mainClient, logger),
		Logger:       logger,
	}, nil
}

// Research runs the research stage for one topic.
func (p *Pipeline) Research(ctx context.Context, topic string) (*model.EvidenceBundle, error) {
	return p.Orchestrator.Research(ctx, topic)
}

// Script generates the narrated script for a bundle.
func (p *Pipeline) Script(ctx context.Context, bundle *model.EvidenceBundle) (*model.FullScript, error) {
	return p.Writer.Generate(ctx, bundle)
}

// Package produces upload metadata for a script.
func (p *Pipeline) Package(ctx context.Context, s *model.FullScript) (*model.VideoMetadata, error) {
	return p.Metadata.Generate(ctx, s)
}
