// Package usecases - inbox.go answers question files dropped into a directory.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

const inboxModule = "inbox"

// InboxUseCase feeds question files through a QuerySession one at a time
// and writes each answer as Markdown.
type InboxUseCase struct {
	session *QuerySession
	loader  ports.QuestionLoader
	watcher ports.FileWatcher
	outDir  string
	persona entities.Persona // used when a file names no mode
	logger  ports.Logger

	seen map[string]string // path -> last question text answered
}

// NewInboxUseCase creates an InboxUseCase with injected dependencies.
func NewInboxUseCase(
	session *QuerySession,
	loader ports.QuestionLoader,
	watcher ports.FileWatcher,
	outDir string,
	defaultPersona entities.Persona,
	logger ports.Logger,
) *InboxUseCase {
	if outDir == "" {
		outDir = "./answers"
	}
	if !defaultPersona.Valid() {
		defaultPersona = entities.DefaultPersona
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &InboxUseCase{
		session: session,
		loader:  loader,
		watcher: watcher,
		outDir:  outDir,
		persona: defaultPersona,
		logger:  logger,
		seen:    make(map[string]string),
	}
}

// Run watches dir until ctx ends, answering every new or changed question file.
func (uc *InboxUseCase) Run(ctx context.Context, dir string) error {
	events, err := uc.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	uc.logger.Info(inboxModule, "watching inbox", map[string]interface{}{"dir": dir, "out": uc.outDir})
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !uc.accepts(ev.Path) {
				continue
			}
			if ev.Operation == ports.FileDeleted {
				delete(uc.seen, ev.Path)
				continue
			}
			if _, err := uc.Process(ctx, ev.Path); err != nil && !errors.Is(err, ErrBlankQuery) {
				uc.logger.Warn(inboxModule, "question file skipped", map[string]interface{}{
					"path":  ev.Path,
					"error": err.Error(),
				})
			}
		}
	}
}

// Process answers one question file and returns the path of the written
// answer. An unchanged file that was already answered returns "" and no error.
func (uc *InboxUseCase) Process(ctx context.Context, path string) (string, error) {
	q, err := uc.loader.Load(ctx, path)
	if err != nil {
		return "", fmt.Errorf("loading question: %w", err)
	}
	if strings.TrimSpace(q.Text) == "" {
		return "", ErrBlankQuery
	}
	if uc.seen[path] == q.Text {
		return "", nil
	}

	persona := q.Persona
	if persona == "" {
		persona = uc.persona
	}
	if err := uc.session.SelectPersona(persona); err != nil {
		return "", err
	}
	uc.session.SetQueryText(q.Text)

	done, err := uc.session.Submit()
	if err != nil {
		return "", err
	}

	var view entities.View
	select {
	case view = <-done:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	uc.seen[path] = q.Text

	if err := os.MkdirAll(uc.outDir, 0755); err != nil {
		return "", fmt.Errorf("creating answer directory: %w", err)
	}
	out := filepath.Join(uc.outDir, strings.TrimSuffix(q.Name, filepath.Ext(q.Name))+".answer.md")
	if err := os.WriteFile(out, []byte(FormatAnswerMarkdown(q.Text, view)), 0644); err != nil {
		return "", fmt.Errorf("writing answer: %w", err)
	}

	uc.logger.Info(inboxModule, "answer written", map[string]interface{}{
		"path":   out,
		"status": string(view.State.Status),
	})
	return out, nil
}

// accepts reports whether the loader handles the file's extension.
func (uc *InboxUseCase) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range uc.loader.SupportedExtensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// FormatAnswerMarkdown renders a finished view as a Markdown document.
func FormatAnswerMarkdown(question string, view entities.View) string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(question)
	sb.WriteString("\n\n## ")
	sb.WriteString(view.PersonaLabel)
	sb.WriteString("\n\n")
	sb.WriteString(view.State.Answer)
	sb.WriteString("\n")

	if len(view.Resolved) > 0 {
		sb.WriteString("\n## Sources\n\n")
		for _, r := range view.Resolved {
			if !r.Matched() {
				fmt.Fprintf(&sb, "- %s (not in catalog)\n", r.Identifier)
				continue
			}
			fmt.Fprintf(&sb, "- **%s**, %s. %s [%s]\n", r.Document.Title, r.Document.Date, r.Document.AuthorLine(), r.Document.Category)
		}
	}

	if len(view.Evaluation) > 0 {
		sb.WriteString("\n## Evaluation\n\n")
		for _, ind := range view.Evaluation {
			if !ind.Provided {
				fmt.Fprintf(&sb, "- %s: not provided\n", ind.Label)
				continue
			}
			fmt.Fprintf(&sb, "- %s: %.0f%%\n", ind.Label, ind.Value*100)
		}
	}
	return sb.String()
}
