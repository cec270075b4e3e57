package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkrasnov/docureel/internal/model"
)

// fakeResearcher returns one canned item per topic, failing for topics
// listed in failOn.
type fakeResearcher struct {
	failOn map[string]bool
}

func (f *fakeResearcher) Research(ctx context.Context, topic string) (*model.EvidenceBundle, error) {
	if f.failOn[topic] {
		return nil, errors.New("research failed")
	}
	item := model.EvidenceItem{
		ID:          model.ClaimID("fact about " + topic),
		Claim:       "A verifiable fact about " + topic,
		SourceURL:   "https://wikipedia.org/wiki/" + topic,
		SourceType:  model.SourceEncyclopedia,
		SourceCount: 1,
		Confidence:  0.9,
	}
	return model.NewEvidenceBundle(topic, []model.EvidenceItem{item}, 0)
}

func TestBatchProcessor_ProcessTopics(t *testing.T) {
	processor := NewBatchProcessor(&fakeResearcher{}, 3)

	topics := []string{"topic a", "topic b", "topic c"}
	results := processor.ProcessTopics(context.Background(), topics)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("topic %q failed: %v", r.Topic, r.Err)
		}
		if r.Bundle == nil || len(r.Bundle.Items) != 1 {
			t.Errorf("topic %q: expected 1-item bundle", r.Topic)
		}
	}
}

func TestBatchProcessor_FailedTopicIsolated(t *testing.T) {
	processor := NewBatchProcessor(&fakeResearcher{
		failOn: map[string]bool{"bad topic": true},
	}, 2)

	results := processor.ProcessTopics(context.Background(), []string{"good", "bad topic", "also good"})

	var failed, succeeded int
	for _, r := range results {
		if r.Err != nil {
			failed++
			if r.Topic != "bad topic" {
				t.Errorf("unexpected failure for %q", r.Topic)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("expected 1 failure and 2 successes, got %d/%d", failed, succeeded)
	}
}

func TestReadTopicsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.txt")
	content := strings.Join([]string{
		"# documentary backlog",
		"DRAM price crash",
		"",
		"dram price crash", // duplicate, different case
		"Suez canal blockage",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	topics, err := ReadTopicsFromFile(path)
	if err != nil {
		t.Fatalf("ReadTopicsFromFile failed: %v", err)
	}
	want := []string{"DRAM price crash", "Suez canal blockage"}
	if fmt.Sprint(topics) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", topics, want)
	}
}

func TestReadTopicsFromFile_Missing(t *testing.T) {
	if _, err := ReadTopicsFromFile("/nonexistent/topics.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
