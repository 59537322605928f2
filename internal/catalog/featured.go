package catalog

import "math/rand/v2"

// Sample returns up to n products chosen uniformly without replacement. The
// input is not modified. With a nil r the global unseeded source is used;
// pass a seeded *rand.Rand for a reproducible selection.
func Sample(products []Product, n int, r *rand.Rand) []Product {
	if n <= 0 || len(products) == 0 {
		return []Product{}
	}

	shuffled := cloneProducts(products)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if r != nil {
		r.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// NewSeededRand returns a deterministic source, or nil for seed 0.
func NewSeededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Categories lists distinct non-empty categories in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// FilterByCategory keeps products in category; "" and "all" keep everything.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" || category == "all" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
