// Package entities contains core business entities.
// These are pure domain objects with no external dependencies: the document
// catalog records, the persona a question is asked in, and the query state
// a session moves through.
package entities

import "strings"

// Category classifies a catalog document.
type Category string

const (
	CategoryFoundingDocument Category = "founding_document"
	CategoryPamphlet         Category = "pamphlet"
	CategoryLetter           Category = "letter"
	CategorySpeech           Category = "speech"
	CategoryEssay            Category = "essay"
)

var categoryNames = map[Category]string{
	CategoryFoundingDocument: "Founding Documents",
	CategoryPamphlet:         "Pamphlets",
	CategoryLetter:           "Letters",
	CategorySpeech:           "Speeches",
	CategoryEssay:            "Essays",
}

// DisplayName returns the plural heading used when grouping documents.
// Unknown categories fall back to their raw value.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Document is an immutable catalog entry. Title is its identity.
type Document struct {
	Title    string   `yaml:"title" json:"title"`
	Date     string   `yaml:"date" json:"date"` // Display-formatted, never parsed
	Authors  []string `yaml:"authors" json:"authors"`
	Category Category `yaml:"category" json:"category"`
	Excerpt  string   `yaml:"excerpt" json:"excerpt"`
}

// AuthorLine joins the authors for display.
func (d Document) AuthorLine() string {
	return strings.Join(d.Authors, ", ")
}

// DocumentGroup is a run of documents sharing a category.
type DocumentGroup struct {
	Category  Category   `json:"category"`
	Name      string     `json:"name"`
	Documents []Document `json:"documents"`
}

// GroupByCategory groups documents by category, ordering groups by the first
// appearance of each category and keeping catalog order inside a group.
func GroupByCategory(docs []Document) []DocumentGroup {
	index := make(map[Category]int)
	var groups []DocumentGroup
	for _, d := range docs {
		i, ok := index[d.Category]
		if !ok {
			i = len(groups)
			index[d.Category] = i
			groups = append(groups, DocumentGroup{Category: d.Category, Name: d.Category.DisplayName()})
		}
		groups[i].Documents = append(groups[i].Documents, d)
	}
	return groups
}

// ResolvedSource pairs a raw source identifier with the catalog document it
// matched. Document is nil when nothing matched.
type ResolvedSource struct {
	Identifier string    `json:"identifier"`
	Document   *Document `json:"document,omitempty"`
}

// Matched reports whether the identifier was joined to a catalog entry.
func (r ResolvedSource) Matched() bool {
	return r.Document != nil
}
