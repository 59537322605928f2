package catalog

import (
	"reflect"
	"testing"
)

func TestSample_SeededIsDeterministic(t *testing.T) {
	products := []Product{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}

	a := Sample(products, 3, NewSeededRand(42))
	b := Sample(products, 3, NewSeededRand(42))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed, different picks: %v vs %v", a, b)
	}
	if len(a) != 3 {
		t.Fatalf("len=%d want 3", len(a))
	}

	seen := map[string]bool{}
	for _, p := range a {
		if seen[p.ID] {
			t.Fatalf("duplicate pick %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestSample_DoesNotMutateInput(t *testing.T) {
	products := []Product{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	orig := cloneProducts(products)

	_ = Sample(products, 2, NewSeededRand(1))
	_ = Sample(products, 2, nil)

	if !reflect.DeepEqual(products, orig) {
		t.Fatalf("input reordered: %v", products)
	}
}

func TestSample_Bounds(t *testing.T) {
	products := []Product{{ID: "1"}, {ID: "2"}}
	if got := Sample(products, 0, nil); len(got) != 0 {
		t.Fatalf("n=0 gave %d", len(got))
	}
	if got := Sample(products, 9, nil); len(got) != 2 {
		t.Fatalf("n>len gave %d", len(got))
	}
	if got := Sample(nil, 3, nil); got == nil || len(got) != 0 {
		t.Fatalf("empty input gave %v", got)
	}
	if NewSeededRand(0) != nil {
		t.Fatalf("seed 0 should mean unseeded")
	}
}

func TestCategoriesAndFilter(t *testing.T) {
	products := []Product{
		{ID: "1", Category: "B"},
		{ID: "2", Category: ""},
		{ID: "3", Category: "A"},
		{ID: "4", Category: "B"},
	}
	if got := Categories(products); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("categories=%v", got)
	}
	if got := FilterByCategory(products, "B"); len(got) != 2 || got[1].ID != "4" {
		t.Fatalf("filter=%v", got)
	}
	if got := FilterByCategory(products, ""); len(got) != 4 {
		t.Fatalf("empty filter=%d", len(got))
	}
	if got := FilterByCategory(products, "nope"); len(got) != 0 {
		t.Fatalf("unknown filter=%d", len(got))
	}
}

func TestFallback(t *testing.T) {
	a := Fallback()
	if len(a) == 0 {
		t.Fatalf("fallback is empty")
	}
	for _, p := range a {
		if p.Category != FallbackCategory || p.ID == "" || p.Title == "" || p.Price <= 0 {
			t.Fatalf("bad fallback record %+v", p)
		}
	}

	a[0].Title = "mutated"
	if Fallback()[0].Title == "mutated" {
		t.Fatalf("Fallback shares its backing array")
	}
	if !reflect.DeepEqual(Fallback(), Fallback()) {
		t.Fatalf("fallback is not deterministic")
	}
}
