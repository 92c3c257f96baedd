// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, adapters implement them.
package ports

import (
	"context"
	"time"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

// AnswerGateway sends one question to the retrieval backend.
// Implementations make exactly one network call per Ask, never retry and
// report failures as *entities.GatewayError.
type AnswerGateway interface {
	Ask(ctx context.Context, q entities.Question) (*entities.Answer, error)
}

// Catalog is the static, read-only document reference set.
type Catalog interface {
	// Documents returns every document in insertion order.
	Documents() []entities.Document

	// Search runs a free-text query over the catalog, best hits first.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// SearchHit is one catalog search result.
type SearchHit struct {
	Document entities.Document
	Score    float64
}

// Logger is the structured logger used across the domain.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

// Metrics records submission outcomes.
type Metrics interface {
	ObserveSubmission(persona entities.Persona, kind entities.ErrorKind, elapsed time.Duration)
	ObserveRejection(kind entities.ErrorKind)
}

// QuestionLoader reads a question file dropped into the inbox.
type QuestionLoader interface {
	Load(ctx context.Context, path string) (*QuestionFile, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}

// QuestionFile is a parsed inbox question. Persona is empty when the file
// does not name one.
type QuestionFile struct {
	Path    string
	Name    string
	Text    string
	Persona entities.Persona
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
