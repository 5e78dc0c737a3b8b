package catalog

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// rawCatalog mirrors the YAML document structure
type rawCatalog struct {
	Categories []rawCategory `yaml:"categories"`
}

type rawCategory struct {
	ID            string           `yaml:"id"`
	Name          string           `yaml:"name"`
	Questions     []rawQuestion    `yaml:"questions"`
	Subcategories []rawSubcategory `yaml:"subcategories"`
}

type rawSubcategory struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	Questions []rawQuestion `yaml:"questions"`
}

type rawQuestion struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Parse builds a Catalog from a YAML document, validating structure and
// id uniqueness
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if len(raw.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}

	c := &Catalog{byID: make(map[string]int)}
	appendQuestion := func(q rawQuestion, category, subcategory string) error {
		if q.ID == "" {
			return fmt.Errorf("category %q: question with empty id", category)
		}
		if q.Text == "" {
			return fmt.Errorf("question %q: empty text", q.ID)
		}
		if _, exists := c.byID[q.ID]; exists {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		c.byID[q.ID] = len(c.flattened)
		c.flattened = append(c.flattened, Question{
			ID:          q.ID,
			Text:        q.Text,
			Category:    category,
			Subcategory: subcategory,
			Order:       len(c.flattened),
		})
		return nil
	}

	for _, cat := range raw.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category %q: empty name", cat.ID)
		}
		for _, q := range cat.Questions {
			if err := appendQuestion(q, cat.Name, ""); err != nil {
				return nil, err
			}
		}
		for _, sub := range cat.Subcategories {
			if sub.Name == "" {
				return nil, fmt.Errorf("subcategory %q: empty name", sub.ID)
			}
			for _, q := range sub.Questions {
				if err := appendQuestion(q, cat.Name, sub.Name); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(c.flattened) == 0 {
		return nil, fmt.Errorf("catalog has no questions")
	}
	return c, nil
}

// Load reads and parses a catalog document from the given filesystem.
// Deployments may override the embedded default with a site-specific
// catalog file; additive changes only.
func Load(fs afero.Fs, path string) (*Catalog, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return Parse(data)
}
