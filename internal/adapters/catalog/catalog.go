// Package catalog provides the document catalog adapter.
// It implements ports.Catalog over an ordered, read-only document set loaded
// once from embedded YAML, with an in-memory full-text index for search.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"
	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Store is an immutable catalog. Safe for concurrent use.
type Store struct {
	docs    []entities.Document
	byTitle map[string]int

	mu    sync.RWMutex
	index bleve.Index
}

type catalogFile struct {
	Documents []entities.Document `yaml:"documents"`
}

// indexedDocument is what bleve sees for one document.
type indexedDocument struct {
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Excerpt  string `json:"excerpt"`
}

// NewEmbedded loads the catalog compiled into the binary.
func NewEmbedded() (*Store, error) {
	return Load(embeddedCatalog)
}

// Load parses a YAML catalog and indexes it. Titles must be non-empty and unique.
func Load(data []byte) (*Store, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	s := &Store{
		docs:    make([]entities.Document, 0, len(file.Documents)),
		byTitle: make(map[string]int, len(file.Documents)),
	}
	for i, doc := range file.Documents {
		doc.Title = strings.TrimSpace(doc.Title)
		if doc.Title == "" {
			return nil, fmt.Errorf("catalog entry %d has no title", i)
		}
		if _, dup := s.byTitle[doc.Title]; dup {
			return nil, fmt.Errorf("duplicate catalog title %q", doc.Title)
		}
		s.byTitle[doc.Title] = len(s.docs)
		s.docs = append(s.docs, doc)
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating catalog index: %w", err)
	}
	for _, doc := range s.docs {
		if err := index.Index(doc.Title, indexedDocument{
			Title:    doc.Title,
			Authors:  doc.AuthorLine(),
			Category: string(doc.Category),
			Date:     doc.Date,
			Excerpt:  doc.Excerpt,
		}); err != nil {
			index.Close()
			return nil, fmt.Errorf("indexing %q: %w", doc.Title, err)
		}
	}
	s.index = index
	return s, nil
}

// Documents returns every document in insertion order. Callers get copies.
func (s *Store) Documents() []entities.Document {
	out := make([]entities.Document, len(s.docs))
	for i, doc := range s.docs {
		doc.Authors = append([]string(nil), doc.Authors...)
		out[i] = doc
	}
	return out
}

// Search matches free text against title, authors, category, date and
// excerpt. A blank query returns no hits.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]ports.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = len(s.docs)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, fmt.Errorf("catalog closed")
	}
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}

	hits := make([]ports.SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, ok := s.byTitle[hit.ID]
		if !ok {
			continue
		}
		doc := s.docs[i]
		doc.Authors = append([]string(nil), doc.Authors...)
		hits = append(hits, ports.SearchHit{Document: doc, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the search index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
