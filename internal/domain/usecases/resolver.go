// Package usecases - resolver.go joins backend source identifiers against the catalog.
package usecases

import (
	"strings"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

// SourceResolver matches source identifiers to catalog documents.
// It holds no state besides the catalog, so resolving the same identifiers
// twice always gives the same result.
type SourceResolver struct {
	catalog ports.Catalog
}

// NewSourceResolver creates a resolver over the given catalog.
func NewSourceResolver(catalog ports.Catalog) *SourceResolver {
	return &SourceResolver{catalog: catalog}
}

// Resolve returns one ResolvedSource per identifier, in the same order.
//
// The first document in catalog order whose title contains the identifier
// (case-sensitive) is used. Blank identifiers never match, since every
// title would contain them.
func (r *SourceResolver) Resolve(identifiers []string) []entities.ResolvedSource {
	resolved := make([]entities.ResolvedSource, 0, len(identifiers))
	if len(identifiers) == 0 {
		return resolved
	}

	docs := r.catalog.Documents()
	for _, id := range identifiers {
		resolved = append(resolved, entities.ResolvedSource{
			Identifier: id,
			Document:   match(docs, id),
		})
	}
	return resolved
}

func match(docs []entities.Document, id string) *entities.Document {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	for i := range docs {
		if strings.Contains(docs[i].Title, id) {
			doc := docs[i]
			return &doc
		}
	}
	return nil
}
