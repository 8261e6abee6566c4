package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Category is one group of demo items with the tags drawn for its posts.
type Category struct {
	Name  string   `yaml:"name"`
	Tags  []string `yaml:"tags"`
	Items []string `yaml:"items"`
}

// Catalog is the source material for generated trade posts.
type Catalog struct {
	Conditions []string   `yaml:"conditions"`
	Categories []Category `yaml:"categories"`
}

// LoadCatalog parses a catalog document. Every category needs at least one item.
func LoadCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	for _, cat := range c.Categories {
		if cat.Name == "" || len(cat.Items) == 0 {
			return nil, fmt.Errorf("catalog category %q has no items", cat.Name)
		}
	}
	if len(c.Conditions) == 0 {
		c.Conditions = []string{"Used"}
	}
	return &c, nil
}

// DefaultCatalog returns the embedded demo catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(catalogYAML)
}
