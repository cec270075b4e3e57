package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dkrasnov/docureel/internal/model"
)

// Researcher runs deep research for one topic.
type Researcher interface {
	Research(ctx context.Context, topic string) (*model.EvidenceBundle, error)
}

// TopicJob researches a single topic.
type TopicJob struct {
	Topic      string
	Researcher Researcher
}

// Execute runs the research job.
func (j *TopicJob) Execute(ctx context.Context) Result {
	bundle, err := j.Researcher.Research(ctx, j.Topic)
	return &TopicResult{
		Topic:  j.Topic,
		Bundle: bundle,
		Err:    err,
	}
}

// TopicResult is the outcome of researching one topic. A failed topic
// never aborts its siblings in a batch.
type TopicResult struct {
	Topic  string
	Bundle *model.EvidenceBundle
	Err    error
}

// GetError returns the error from the topic result.
func (r *TopicResult) GetError() error {
	return r.Err
}

// BatchProcessor researches multiple topics concurrently.
type BatchProcessor struct {
	researcher  Researcher
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(researcher Researcher, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		researcher:  researcher,
		concurrency: concurrency,
	}
}

// ProcessTopics researches topics in parallel and returns per-topic
// results in completion order.
func (b *BatchProcessor) ProcessTopics(ctx context.Context, topics []string) []*TopicResult {
	if len(topics) == 0 {
		return []*TopicResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, topic := range topics {
		pool.Submit(&TopicJob{Topic: topic, Researcher: b.researcher})
	}

	results := pool.Wait()

	topicResults := make([]*TopicResult, len(results))
	for i, result := range results {
		topicResults[i] = result.(*TopicResult)
	}
	return topicResults
}

// ProcessFile reads topics from a file and researches them in parallel.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*TopicResult, error) {
	topics, err := ReadTopicsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}
	return b.ProcessTopics(ctx, topics), nil
}

// ReadTopicsFromFile reads topics from a file, one per line. Blank
// lines and #-comments are skipped, duplicates collapsed.
func ReadTopicsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var topics []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			topics = append(topics, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return topics, nil
}
