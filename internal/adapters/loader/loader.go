// Package loader provides question-file loading adapters.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

const maxQuestionBytes = 64 << 10

// QuestionLoader reads plain text and Markdown question files.
//
// The first non-empty line may name a persona as "mode: <persona>"; the rest
// of the file is the question. Markdown heading markers are stripped.
type QuestionLoader struct{}

// NewQuestionLoader creates a new question loader.
func NewQuestionLoader() *QuestionLoader {
	return &QuestionLoader{}
}

// Load reads a question from the given path.
func (l *QuestionLoader) Load(ctx context.Context, path string) (*ports.QuestionFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxQuestionBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, maxQuestionBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	persona, text, err := parseQuestion(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return &ports.QuestionFile{
		Path:    path,
		Name:    filepath.Base(path),
		Text:    text,
		Persona: persona,
	}, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *QuestionLoader) SupportedExtensions() []string {
	return []string{".txt", ".md"}
}

func parseQuestion(content string) (entities.Persona, string, error) {
	var persona entities.Persona
	var lines []string
	headerDone := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 4096), maxQuestionBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !headerDone && line != "" {
			headerDone = true
			if value, ok := cutPrefixFold(line, "mode:"); ok {
				p, err := entities.ParsePersona(value)
				if err != nil {
					return "", "", err
				}
				persona = p
				continue
			}
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	return persona, strings.Join(lines, " "), nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}
