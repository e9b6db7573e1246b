package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avetisyan-lab/citewell/internal/model"
)

type stubMatcher struct {
	perSentence map[string][]model.SimilarClaim
}

func (m *stubMatcher) FindSimilarClaims(ctx context.Context, sentence string, threshold float64) []model.SimilarClaim {
	if matches, ok := m.perSentence[sentence]; ok {
		return matches
	}
	return []model.SimilarClaim{}
}

// A manuscript-sized batch must complete with every key present; the
// whole batch runs through a handful of workers.
func TestMatchSentencesLargeBatch(t *testing.T) {
	matcher := &stubMatcher{perSentence: map[string][]model.SimilarClaim{
		"sentence": {{ClaimID: "c1", Similarity: 0.8}},
	}}
	b := NewBatchMatcher(matcher, 4)

	sentences := make([]string, 150)
	for i := range sentences {
		sentences[i] = "sentence"
	}

	done := make(chan map[string][]model.SimilarClaim)
	go func() {
		done <- b.MatchSentences(context.Background(), sentences, 0.5)
	}()

	select {
	case out := <-done:
		if len(out) != len(sentences) {
			t.Fatalf("expected %d keys, got %d", len(sentences), len(out))
		}
		for i := range sentences {
			key := fmt.Sprintf("sentence_%d", i)
			if got := out[key]; len(got) != 1 || got[0].ClaimID != "c1" {
				t.Fatalf("%s = %+v", key, got)
			}
		}
	case <-time.After(10 * time.Second):
		t.Fatal("MatchSentences blocked on a large batch")
	}
}

func TestMatchSentencesKeysByPosition(t *testing.T) {
	matcher := &stubMatcher{perSentence: map[string][]model.SimilarClaim{
		"first":  {{ClaimID: "c1", Similarity: 0.9}},
		"second": {{ClaimID: "c2", Similarity: 0.7}, {ClaimID: "c3", Similarity: 0.6}},
	}}
	b := NewBatchMatcher(matcher, 2)

	out := b.MatchSentences(context.Background(), []string{"first", "second", "third"}, 0.5)

	if len(out) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(out))
	}
	if got := out["sentence_0"]; len(got) != 1 || got[0].ClaimID != "c1" {
		t.Errorf("sentence_0 = %+v", got)
	}
	if got := out["sentence_1"]; len(got) != 2 {
		t.Errorf("sentence_1 = %+v", got)
	}
	if got, ok := out["sentence_2"]; !ok || got == nil || len(got) != 0 {
		t.Errorf("sentence_2 = (%+v, %v), want empty slice", got, ok)
	}
}

func TestMatchSentencesEmptyInput(t *testing.T) {
	b := NewBatchMatcher(&stubMatcher{}, 2)
	out := b.MatchSentences(context.Background(), nil, 0.5)
	if len(out) != 0 {
		t.Errorf("expected empty map, got %v", out)
	}
}

func TestMatchSentencesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatchMatcher(&stubMatcher{}, 2)
	out := b.MatchSentences(ctx, []string{"a", "b"}, 0.5)

	// Every key is still present; cancelled work degrades to empty results
	for _, key := range []string{"sentence_0", "sentence_1"} {
		if got, ok := out[key]; !ok || got == nil {
			t.Errorf("key %s = (%v, %v)", key, got, ok)
		}
	}
}
