package literature

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/avetisyan-lab/citewell/internal/model"
)

// snippetDoc is the shape stored in the bleve index
type snippetDoc struct {
	Text      string `json:"text"`
	FileName  string `json:"file_name"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Index is the bleve-backed literature snippet index.
type Index struct {
	index bleve.Index
}

// OpenIndex creates or opens the snippet index at path. An existing index
// is reused; remove the directory to force a full re-index after mapping
// changes.
func OpenIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open literature index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so terse query
	// terms match the literature verbatim
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("file_name", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("file_path", keywordFieldMapping)

	numericFieldMapping := bleve.NewNumericFieldMapping()
	numericFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("start_line", numericFieldMapping)
	docMapping.AddFieldMappingsAt("end_line", numericFieldMapping)

	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create literature index: %w", err)
	}
	return &Index{index: index}, nil
}

// IndexSnippets indexes snippets in one batch.
func (ix *Index) IndexSnippets(ctx context.Context, snippets []model.Snippet) error {
	batch := ix.index.NewBatch()
	for _, s := range snippets {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := snippetDoc{
			Text:      s.Text,
			FileName:  s.FileName,
			FilePath:  s.FilePath,
			StartLine: s.StartLine,
			EndLine:   s.EndLine,
		}
		if err := batch.Index(s.ID, doc); err != nil {
			return fmt.Errorf("batch snippet %s: %w", s.ID, err)
		}
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}
	return nil
}

// Search runs a match query over snippet text and returns up to limit
// candidates.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]model.Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := bleve.NewMatchQuery(query)
	q.SetField("text")
	return ix.run(bleve.NewSearchRequest(q), limit)
}

// SearchInFile restricts the match query to snippets from one extracted
// text file.
func (ix *Index) SearchInFile(ctx context.Context, query, fileName string, limit int) ([]model.Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	match := bleve.NewMatchQuery(query)
	match.SetField("text")

	fileQuery := bleve.NewTermQuery(fileName)
	fileQuery.SetField("file_name")

	q := bleve.NewConjunctionQuery(match, fileQuery)
	return ix.run(bleve.NewSearchRequest(q), limit)
}

// DocCount returns the number of indexed snippets.
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// Close closes the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

func (ix *Index) run(req *bleve.SearchRequest, limit int) ([]model.Snippet, error) {
	if limit <= 0 {
		limit = 10
	}
	req.Size = limit
	req.Fields = []string{"*"}

	results, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("literature search: %w", err)
	}

	snippets := make([]model.Snippet, 0, len(results.Hits))
	for _, hit := range results.Hits {
		snippets = append(snippets, model.Snippet{
			ID:        hit.ID,
			Text:      fieldString(hit.Fields, "text"),
			FileName:  fieldString(hit.Fields, "file_name"),
			FilePath:  fieldString(hit.Fields, "file_path"),
			StartLine: fieldInt(hit.Fields, "start_line"),
			EndLine:   fieldInt(hit.Fields, "end_line"),
			Score:     hit.Score,
		})
	}
	return snippets, nil
}

func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]interface{}, name string) int {
	if v, ok := fields[name].(float64); ok {
		return int(v)
	}
	return 0
}
