package literature

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/worker"
)

// Ingestor walks a literature directory, extracts plain text into sidecar
// files, chunks it into line-window snippets, and feeds the snippet index
// and the citation-source mapping table.
type Ingestor struct {
	index        *Index
	sources      *SourceMapper
	extractedDir string
	window       int
	overlap      int
	concurrency  int
	logger       *zap.Logger
}

// NewIngestor creates an ingestor writing extracted text under
// extractedDir.
func NewIngestor(index *Index, sources *SourceMapper, extractedDir string, cfg model.SearchConfig, concurrency int, logger *zap.Logger) *Ingestor {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Ingestor{
		index:        index,
		sources:      sources,
		extractedDir: extractedDir,
		window:       cfg.ChunkLines,
		overlap:      cfg.ChunkOverlap,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// IngestStats summarizes one ingest run
type IngestStats struct {
	Files    int // Source documents processed
	Failed   int // Documents that could not be extracted
	Snippets int // Snippets indexed
	Sources  int // Citation keys mapped
}

// extractFileJob extracts and chunks one source document
type extractFileJob struct {
	path         string
	extractedDir string
	window       int
	overlap      int
}

// extractFileResult carries one document's snippets and source mapping
type extractFileResult struct {
	path     string
	snippets []model.Snippet
	mapping  SourceMapping
	err      error
}

func (r *extractFileResult) GetError() error { return r.err }

// Execute extracts the document's text, writes the sidecar file, and
// chunks it into snippets.
func (j *extractFileJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return &extractFileResult{path: j.path, err: err}
	}

	text, err := ExtractText(j.path)
	if err != nil {
		return &extractFileResult{path: j.path, err: err}
	}

	base := filepath.Base(j.path)
	sidecarName := strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
	sidecarPath := filepath.Join(j.extractedDir, sidecarName)
	if err := os.WriteFile(sidecarPath, []byte(text), 0644); err != nil {
		return &extractFileResult{path: j.path, err: fmt.Errorf("write extracted text: %w", err)}
	}

	author, year, title := ParseFileName(base)
	result := &extractFileResult{
		path:     j.path,
		snippets: chunkLines(sidecarName, sidecarPath, text, j.window, j.overlap),
	}
	if key := KeyFromFileName(base); key != "" {
		result.mapping = SourceMapping{
			AuthorYear:        key,
			Author:            author,
			Year:              year,
			Title:             title,
			SourcePath:        j.path,
			ExtractedTextFile: sidecarName,
		}
	}
	return result
}

// IngestDir processes every supported document under dir. Per-document
// failures are logged and skipped; only infrastructure failures (index
// writes, directory walks) abort the run.
func (g *Ingestor) IngestDir(ctx context.Context, dir string) (*IngestStats, error) {
	if err := os.MkdirAll(g.extractedDir, 0755); err != nil {
		return nil, fmt.Errorf("create extracted dir: %w", err)
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !SupportedExt(filepath.Ext(path)) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk literature dir: %w", err)
	}

	pool := worker.NewPool(g.concurrency)
	pool.Start()
	for _, path := range paths {
		pool.Submit(&extractFileJob{
			path:         path,
			extractedDir: g.extractedDir,
			window:       g.window,
			overlap:      g.overlap,
		})
	}
	results := pool.Wait()

	stats := &IngestStats{Files: len(paths)}
	var snippets []model.Snippet
	for _, result := range results {
		fr, ok := result.(*extractFileResult)
		if !ok {
			continue
		}
		if fr.err != nil {
			stats.Failed++
			g.logger.Warn("extract failed", zap.String("path", fr.path), zap.Error(fr.err))
			continue
		}
		snippets = append(snippets, fr.snippets...)
		if fr.mapping.AuthorYear != "" {
			g.sources.Add(fr.mapping)
			stats.Sources++
		} else {
			g.logger.Warn("no citation key derivable from filename",
				zap.String("path", fr.path))
		}
	}

	if err := g.index.IndexSnippets(ctx, snippets); err != nil {
		return nil, err
	}
	stats.Snippets = len(snippets)

	if err := g.sources.Save(); err != nil {
		return nil, err
	}

	g.logger.Info("literature ingest complete",
		zap.Int("files", stats.Files),
		zap.Int("failed", stats.Failed),
		zap.Int("snippets", stats.Snippets),
		zap.Int("sources", stats.Sources))
	return stats, nil
}
