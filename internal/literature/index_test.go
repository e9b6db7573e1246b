package literature

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/avetisyan-lab/citewell/internal/model"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "literature.bleve"))
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func seedSnippets() []model.Snippet {
	return []model.Snippet{
		{
			ID:        "leek.txt:1-6",
			Text:      "batch effects are a widespread problem in high-throughput data",
			FileName:  "leek.txt",
			FilePath:  "/corpus/leek.txt",
			StartLine: 1,
			EndLine:   6,
		},
		{
			ID:        "leek.txt:5-10",
			Text:      "correction methods substantially improve downstream prediction",
			FileName:  "leek.txt",
			FilePath:  "/corpus/leek.txt",
			StartLine: 5,
			EndLine:   10,
		},
		{
			ID:        "johnson.txt:1-6",
			Text:      "empirical bayes adjustment of batch effects in microarray data",
			FileName:  "johnson.txt",
			FilePath:  "/corpus/johnson.txt",
			StartLine: 1,
			EndLine:   6,
		},
	}
}

func TestIndexAndSearch(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	if err := ix.IndexSnippets(ctx, seedSnippets()); err != nil {
		t.Fatalf("IndexSnippets failed: %v", err)
	}
	count, err := ix.DocCount()
	if err != nil || count != 3 {
		t.Fatalf("DocCount = (%d, %v), want 3", count, err)
	}

	hits, err := ix.Search(ctx, "batch effects", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected hits for indexed text")
	}
	first := hits[0]
	if first.Text == "" || first.FileName == "" || first.StartLine == 0 {
		t.Errorf("stored fields not returned: %+v", first)
	}
}

func TestSearchInFileRestriction(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	if err := ix.IndexSnippets(ctx, seedSnippets()); err != nil {
		t.Fatalf("IndexSnippets failed: %v", err)
	}

	hits, err := ix.SearchInFile(ctx, "batch effects", "johnson.txt", 10)
	if err != nil {
		t.Fatalf("SearchInFile failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected hits in johnson.txt")
	}
	for _, h := range hits {
		if h.FileName != "johnson.txt" {
			t.Errorf("hit from wrong file: %s", h.FileName)
		}
	}
}

func TestOpenIndexReusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "literature.bleve")
	ctx := context.Background()

	first, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	if err := first.IndexSnippets(ctx, seedSnippets()); err != nil {
		t.Fatalf("IndexSnippets failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	count, err := second.DocCount()
	if err != nil || count != 3 {
		t.Errorf("DocCount after reopen = (%d, %v), want 3", count, err)
	}
}

func TestSearchCancelledContext(t *testing.T) {
	ix := openTestIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ix.Search(ctx, "anything", 5); err == nil {
		t.Error("expected error from cancelled context")
	}
}
