// Package validator reports defect shapes without touching documents.
package validator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/mdxmend/internal/models"
	"github.com/starford/mdxmend/internal/rules"
	"github.com/starford/mdxmend/internal/storage"
)

// contextRadius is how many characters of surrounding text a finding shows
// on each side of the match.
const contextRadius = 20

// KindReadError marks a finding produced by a document that could not be read.
const KindReadError = "read_error"

var flatten = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Scan returns the findings for one document's content, grouped by rule in
// declared order and by position within each rule.
func Scan(name, content string) []models.Finding {
	var out []models.Finding
	var runes []rune
	for _, r := range rules.All() {
		matches := r.FindAll(content)
		if len(matches) == 0 {
			continue
		}
		if runes == nil {
			runes = []rune(content)
		}
		for _, m := range matches {
			line := lineOf(runes, m.Index)
			ctx := contextAround(runes, m.Index, m.Index+m.Length)
			out = append(out, models.Finding{
				Document: name,
				Kind:     string(r.Kind),
				Line:     line,
				Context:  ctx,
				Message:  fmt.Sprintf("Line %d: %s: ...%s...", line, r.Description, ctx),
			})
		}
	}
	return out
}

// lineOf returns the 1-based line number of the rune at idx.
func lineOf(runes []rune, idx int) int {
	line := 1
	for _, r := range runes[:idx] {
		if r == '\n' {
			line++
		}
	}
	return line
}

func contextAround(runes []rune, start, end int) string {
	from := max(start-contextRadius, 0)
	to := min(end+contextRadius, len(runes))
	return flatten.Replace(string(runes[from:to]))
}

// Validator scans every document in a store.
type Validator struct {
	store  storage.Provider
	logger *slog.Logger
}

// New creates a Validator.
func New(store storage.Provider, logger *slog.Logger) *Validator {
	return &Validator{store: store, logger: logger}
}

// Run returns all findings for the directory in listing order. An empty
// result means no defects were detected. Unreadable documents become
// findings; only a failure to list the directory is returned as an error.
func (v *Validator) Run() ([]models.Finding, error) {
	names, err := v.store.List()
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	var out []models.Finding
	for _, name := range names {
		out = append(out, v.Document(name)...)
	}
	return out, nil
}

// Document returns the findings for a single document.
func (v *Validator) Document(name string) []models.Finding {
	data, err := v.store.Read(name)
	if err != nil {
		v.logger.Warn("validator: read failed", slog.String("document", name), slog.String("error", err.Error()))
		return []models.Finding{{
			Document: name,
			Kind:     KindReadError,
			Message:  fmt.Sprintf("Error reading file: %v", err),
		}}
	}
	return Scan(name, string(data))
}
