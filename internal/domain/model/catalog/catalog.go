// Package catalog holds the fixed, ordered set of observation questions.
// The catalog is defined as a YAML document (an embedded default, optionally
// replaced by a file at startup) and is immutable at runtime. Question ids
// are stable: stored answers reference them, so ids must never be reused or
// repurposed once deployed.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Question is one entry of the flattened catalog. Order is the position in
// the catalog's declared sequence, starting at 0.
type Question struct {
	ID          string
	Text        string
	Category    string
	Subcategory string // empty when the question sits directly under a category
	Order       int
}

// QuestionError represents catalog lookup failures
type QuestionError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e QuestionError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ErrQuestionNotFound indicates an id that no catalog question carries.
// Callers must treat this as fatal: it signals catalog/data skew.
var ErrQuestionNotFound = QuestionError{
	Code:    "CATALOG_QUESTION_NOT_FOUND",
	Message: "question id not present in catalog",
}

// Catalog is the parsed, validated question catalog
type Catalog struct {
	flattened []Question
	byID      map[string]int // question id -> index into flattened
}

// Flattened returns all questions in declared order. The returned slice is
// a copy; callers may hold it as a stable snapshot.
func (c *Catalog) Flattened() []Question {
	out := make([]Question, len(c.flattened))
	copy(out, c.flattened)
	return out
}

// TotalQuestions returns the number of questions in the catalog
func (c *Catalog) TotalQuestions() int {
	return len(c.flattened)
}

// QuestionAt returns the question at the given flattened index
func (c *Catalog) QuestionAt(index int) (Question, error) {
	if index < 0 || index >= len(c.flattened) {
		return Question{}, fmt.Errorf("question index %d out of range [0,%d): %w",
			index, len(c.flattened), ErrQuestionNotFound)
	}
	return c.flattened[index], nil
}

// Lookup returns the question carrying the given id
func (c *Catalog) Lookup(id string) (Question, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("lookup %q: %w", id, ErrQuestionNotFound)
	}
	return c.flattened[idx], nil
}

// Contains reports whether the id belongs to the catalog
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// CategoryOf returns the category and subcategory of a question id.
// Subcategory is empty for top-level questions.
func (c *Catalog) CategoryOf(id string) (category, subcategory string, err error) {
	q, err := c.Lookup(id)
	if err != nil {
		return "", "", err
	}
	return q.Category, q.Subcategory, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded YAML document.
// The embedded document is validated at build of this package's tests; a
// parse failure here means a corrupt binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
