package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FallbackCategory labels every synthetic product.
const FallbackCategory = "Demo"

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackRecord struct {
	ID       string  `yaml:"id"`
	Title    string  `yaml:"title"`
	Detail   string  `yaml:"detail"`
	Price    float64 `yaml:"price"`
	Category string  `yaml:"category"`
	ImageURL string  `yaml:"imageUrl"`
	LinkURL  string  `yaml:"linkUrl"`
}

var fallbackCatalog = mustLoadFallback(fallbackYAML)

func mustLoadFallback(b []byte) []Product {
	var recs []fallbackRecord
	if err := yaml.Unmarshal(b, &recs); err != nil {
		panic(fmt.Sprintf("catalog: bad embedded fallback: %v", err))
	}
	if len(recs) == 0 {
		panic("catalog: embedded fallback is empty")
	}

	out := make([]Product, 0, len(recs))
	for _, r := range recs {
		if r.Category != FallbackCategory {
			panic(fmt.Sprintf("catalog: fallback %q must be in category %q", r.ID, FallbackCategory))
		}
		out = append(out, Product{
			ID:       r.ID,
			Title:    r.Title,
			Detail:   r.Detail,
			Price:    r.Price,
			Category: r.Category,
			ImageURL: r.ImageURL,
			LinkURL:  r.LinkURL,
		})
	}
	return out
}

// Fallback returns the fixed demo catalog. Callers own the returned slice.
func Fallback() []Product {
	return cloneProducts(fallbackCatalog)
}
