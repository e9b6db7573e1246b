package literature

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ErrNotLoaded is returned when the mapping table is queried before
// LoadSourceMappings has run.
var ErrNotLoaded = errors.New("source mappings not loaded")

// SourceMapping resolves a citation key to its literature document.
type SourceMapping struct {
	AuthorYear        string `json:"author_year"`         // Citation key, e.g. "Leek2010"
	Author            string `json:"author,omitempty"`
	Year              string `json:"year,omitempty"`
	Title             string `json:"title,omitempty"`
	SourcePath        string `json:"source_path"`         // The original document
	ExtractedTextFile string `json:"extracted_text_file"` // Sidecar text file indexed for search
}

// SourceMapper maintains the citation key -> source document table. The
// table is built during corpus ingest and must be loaded before
// resolution queries are meaningful.
type SourceMapper struct {
	path string

	mu     sync.RWMutex
	table  map[string]SourceMapping
	loaded bool
}

// NewSourceMapper creates a mapper persisting its table at path.
func NewSourceMapper(path string) *SourceMapper {
	return &SourceMapper{
		path:  path,
		table: make(map[string]SourceMapping),
	}
}

// LoadSourceMappings (re)loads the table from disk. A missing file loads
// an empty table; the mapper still counts as loaded.
func (m *SourceMapper) LoadSourceMappings() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.table = make(map[string]SourceMapping)
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.loaded = true
			return nil
		}
		return fmt.Errorf("read source mappings: %w", err)
	}

	var mappings []SourceMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return fmt.Errorf("parse source mappings: %w", err)
	}
	for _, sm := range mappings {
		if sm.AuthorYear != "" {
			m.table[sm.AuthorYear] = sm
		}
	}
	m.loaded = true
	return nil
}

// Add registers a mapping. Later entries win on key collision.
func (m *SourceMapper) Add(sm SourceMapping) {
	if sm.AuthorYear == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table[sm.AuthorYear] = sm
	m.loaded = true
}

// Save persists the table to disk.
func (m *SourceMapper) Save() error {
	m.mu.RLock()
	mappings := make([]SourceMapping, 0, len(m.table))
	for _, sm := range m.table {
		mappings = append(mappings, sm)
	}
	m.mu.RUnlock()

	sort.Slice(mappings, func(i, j int) bool { return mappings[i].AuthorYear < mappings[j].AuthorYear })

	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal source mappings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("create mapping dir: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("write source mappings: %w", err)
	}
	return nil
}

// Resolve returns the mapping for a citation key.
func (m *SourceMapper) Resolve(authorYear string) (SourceMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loaded {
		return SourceMapping{}, ErrNotLoaded
	}
	sm, ok := m.table[authorYear]
	if !ok {
		return SourceMapping{}, fmt.Errorf("no source mapped for citation key %q", authorYear)
	}
	return sm, nil
}

// Keys returns every known citation key, sorted.
func (m *SourceMapper) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.table))
	for k := range m.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var yearRe = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)
var nonLetterRe = regexp.MustCompile(`[^\p{L}]+`)

// KeyFromFileName derives a citation key from the corpus filename pattern
// "Author - Year - Title", e.g. "Leek - 2010 - Tackling batch effects.pdf"
// becomes "Leek2010". Returns "" when no author can be derived.
func KeyFromFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.SplitN(base, " - ", 3)

	author := firstAuthorWord(parts[0])
	if author == "" {
		return ""
	}

	year := ""
	if len(parts) > 1 {
		year = yearRe.FindString(parts[1])
	}
	if year == "" {
		year = yearRe.FindString(base)
	}
	return author + year
}

// ParseFileName splits the "Author - Year - Title" pattern into its parts.
// Missing segments come back empty.
func ParseFileName(name string) (author, year, title string) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.SplitN(base, " - ", 3)
	author = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		year = yearRe.FindString(parts[1])
	}
	if len(parts) > 2 {
		title = strings.TrimSpace(parts[2])
	}
	return author, year, title
}

// firstAuthorWord extracts the leading surname, dropping "et al." and
// punctuation.
func firstAuthorWord(segment string) string {
	segment = strings.TrimSpace(segment)
	for _, word := range strings.Fields(segment) {
		cleaned := nonLetterRe.ReplaceAllString(word, "")
		if cleaned == "" {
			continue
		}
		lower := strings.ToLower(cleaned)
		if lower == "et" || lower == "al" {
			continue
		}
		return cleaned
	}
	return ""
}
