package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Defaults substituted for blank source cells.
const (
	UntitledTitle    = "Untitled Product"
	DefaultDetail    = "No description available."
	PlaceholderImage = "https://via.placeholder.com/300?text=No+Image"
	DefaultLink      = "#"
)

// Product is one catalog row. The JSON layout is also the persisted cache
// layout, so field names must stay stable.
type Product struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Detail          string  `json:"detail"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	ImageURL        string  `json:"imageUrl"`
	LinkURL         string  `json:"linkUrl"`
	SourceTimestamp string  `json:"sourceTimestamp"`
}

// Positional layout of a catalog sheet row.
const (
	colTimestamp = iota
	colTitle
	colDetail
	colPrice
	colCategory
	colImage
	colLink
	colID
)

// productFromCells maps one data row to a Product. row is the 1-based index
// of the row among data rows and seeds the placeholder id.
func productFromCells(cells []string, row int) Product {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	return Product{
		ID:              orDefault(cell(colID), placeholderID(row)),
		Title:           orDefault(cell(colTitle), UntitledTitle),
		Detail:          orDefault(cell(colDetail), DefaultDetail),
		Price:           ParsePrice(cell(colPrice)),
		Category:        cell(colCategory),
		ImageURL:        orDefault(cell(colImage), PlaceholderImage),
		LinkURL:         orDefault(cell(colLink), DefaultLink),
		SourceTimestamp: cell(colTimestamp),
	}
}

// ParsePrice coerces an untrusted price string. Anything that is not a
// finite non-negative number becomes 0.
func ParsePrice(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func placeholderID(row int) string {
	return "product-" + strconv.Itoa(row)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func cloneProducts(in []Product) []Product {
	if in == nil {
		return nil
	}
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
