package matching

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/embedding"
	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/store"
)

func newFixture(t *testing.T, claimTexts ...string) (*Service, *store.ClaimStore, *embedding.MockEmbedder) {
	t.Helper()
	claims, err := store.NewClaimStore(filepath.Join(t.TempDir(), "claims.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewClaimStore failed: %v", err)
	}
	for _, text := range claimTexts {
		if _, err := claims.CreateClaim(text, model.CategoryResult); err != nil {
			t.Fatalf("CreateClaim failed: %v", err)
		}
	}
	emb := embedding.NewMockEmbedder(256)
	return NewService(claims, emb, 2, zap.NewNop()), claims, emb
}

func TestFindSimilarClaimsRanking(t *testing.T) {
	svc, _, _ := newFixture(t,
		"batch correction improves downstream prediction accuracy",
		"single cell sequencing reveals rare cell populations",
		"the weather in spring is often unpredictable",
	)

	matches := svc.FindSimilarClaims(context.Background(), "batch correction improves prediction", 0.1)
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].Text != "batch correction improves downstream prediction accuracy" {
		t.Errorf("top match = %q", matches[0].Text)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Similarity < matches[i].Similarity {
			t.Fatal("matches are not sorted by descending similarity")
		}
	}
	for _, m := range matches {
		if m.Similarity < 0.1 || m.Similarity > 1 {
			t.Errorf("similarity %v outside [threshold, 1]", m.Similarity)
		}
	}
}

func TestFindSimilarClaimsThreshold(t *testing.T) {
	svc, _, _ := newFixture(t,
		"batch correction improves downstream prediction accuracy",
		"completely unrelated topic about ocean currents",
	)

	strict := svc.FindSimilarClaims(context.Background(), "batch correction improves prediction", 0.99)
	for _, m := range strict {
		if m.Similarity < 0.99 {
			t.Errorf("match below threshold leaked through: %v", m.Similarity)
		}
	}
}

func TestFindSimilarClaimsCapsAtTwenty(t *testing.T) {
	texts := make([]string, 30)
	for i := range texts {
		texts[i] = "batch correction improves downstream prediction accuracy"
	}
	svc, _, _ := newFixture(t, texts...)

	matches := svc.FindSimilarClaims(context.Background(), "batch correction improves prediction", 0)
	if len(matches) > 20 {
		t.Errorf("result not capped: %d matches", len(matches))
	}
}

func TestFindSimilarClaimsEmbeddingFailure(t *testing.T) {
	svc, _, emb := newFixture(t, "some stored claim")
	emb.FailFor("the query sentence")

	matches := svc.FindSimilarClaims(context.Background(), "the query sentence", 0)
	if matches == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches on query embedding failure, got %d", len(matches))
	}
}

func TestFindSimilarClaimsSkipsFailedClaim(t *testing.T) {
	svc, _, emb := newFixture(t,
		"batch correction improves downstream prediction accuracy",
		"batch correction reduces technical variation",
	)
	emb.FailFor("batch correction reduces technical variation")

	matches := svc.FindSimilarClaims(context.Background(), "batch correction", 0)
	for _, m := range matches {
		if m.Text == "batch correction reduces technical variation" {
			t.Error("claim with failed embedding should be skipped")
		}
	}
	if len(matches) != 1 {
		t.Errorf("expected 1 match, got %d", len(matches))
	}
}

func TestGetTopSimilarClaims(t *testing.T) {
	svc, _, _ := newFixture(t,
		"batch correction improves prediction",
		"batch correction reduces variation",
		"sequencing depth affects sensitivity",
	)

	top := svc.GetTopSimilarClaims(context.Background(), "batch correction", 2)
	if len(top) > 2 {
		t.Errorf("topN not honored: %d results", len(top))
	}
}

func TestGetSimilarityScore(t *testing.T) {
	svc, claims, _ := newFixture(t, "batch correction improves prediction")
	stored := claims.ListClaims()[0]

	score := svc.GetSimilarityScore(context.Background(), "batch correction improves prediction", stored.ID)
	if score < 0.99 {
		t.Errorf("identical text scored %v", score)
	}

	if got := svc.GetSimilarityScore(context.Background(), "anything", "missing-claim"); got != 0 {
		t.Errorf("missing claim scored %v, want 0", got)
	}
}

func TestIsSimilar(t *testing.T) {
	svc, claims, _ := newFixture(t, "batch correction improves prediction")
	stored := claims.ListClaims()[0]

	if !svc.IsSimilar(context.Background(), "batch correction improves prediction", stored.ID, 0.9) {
		t.Error("identical text should clear a 0.9 threshold")
	}
	if svc.IsSimilar(context.Background(), "unrelated ocean currents", stored.ID, 0.9) {
		t.Error("unrelated text should not clear a 0.9 threshold")
	}
}

// Failures must read as not-similar even when a zero threshold would
// otherwise let the zero score pass.
func TestIsSimilarFailuresAtZeroThreshold(t *testing.T) {
	svc, claims, emb := newFixture(t, "batch correction improves prediction")
	stored := claims.ListClaims()[0]

	if svc.IsSimilar(context.Background(), "any sentence", "no-such-claim", 0) {
		t.Error("missing claim reported similar at threshold 0")
	}

	emb.FailFor("a failing sentence")
	if svc.IsSimilar(context.Background(), "a failing sentence", stored.ID, 0) {
		t.Error("failed query embedding reported similar at threshold 0")
	}

	emb.FailFor(stored.Text)
	if svc.IsSimilar(context.Background(), "any sentence", stored.ID, 0) {
		t.Error("failed claim embedding reported similar at threshold 0")
	}
}

func TestBatchFindSimilarClaimsKeys(t *testing.T) {
	svc, _, emb := newFixture(t, "batch correction improves prediction")
	emb.FailFor("failing sentence")

	sentences := []string{
		"batch correction improves prediction",
		"failing sentence",
		"sequencing depth",
	}
	out := svc.BatchFindSimilarClaims(context.Background(), sentences)

	if len(out) != len(sentences) {
		t.Fatalf("expected %d keys, got %d", len(sentences), len(out))
	}
	for i := range sentences {
		key := fmt.Sprintf("sentence_%d", i)
		matches, ok := out[key]
		if !ok {
			t.Fatalf("missing key %s", key)
		}
		if matches == nil {
			t.Errorf("key %s maps to nil, want empty slice", key)
		}
	}
	if len(out["sentence_1"]) != 0 {
		t.Error("failed sentence should map to an empty result")
	}
}
