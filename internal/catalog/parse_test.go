package catalog

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
)

type testCell struct {
	V any `json:"v"`
}

type testRow struct {
	C []*testCell `json:"c"`
}

func gvizPayload(t *testing.T, rows [][]any) string {
	t.Helper()

	out := make([]testRow, 0, len(rows))
	for _, r := range rows {
		cells := make([]*testCell, 0, len(r))
		for _, v := range r {
			if v == nil {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, &testCell{V: v})
		}
		out = append(out, testRow{C: cells})
	}

	b, err := json.Marshal(map[string]any{
		"version": "0.6",
		"status":  "ok",
		"table":   map[string]any{"cols": []any{}, "rows": out},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return gvizPrefix + string(b) + gvizSuffix
}

var headerRow = []any{"Timestamp", "Title", "Detail", "Price", "Category", "Image", "Link", "ID"}

func TestGvizPrefixLength(t *testing.T) {
	if len(gvizPrefix) != 47 {
		t.Fatalf("prefix len=%d want 47", len(gvizPrefix))
	}
}

func TestParseGviz_ShortPayloadIsEmpty(t *testing.T) {
	for _, raw := range []string{"", "x", strings.Repeat("a", minPayloadLen-1)} {
		_, err := ParseGviz(raw, ParseOptions{})
		if !errors.Is(err, ErrEmpty) {
			t.Fatalf("len=%d err=%v want ErrEmpty", len(raw), err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Kind != ParseEmpty {
			t.Fatalf("kind=%v", pe)
		}
	}
}

func TestParseGviz_Malformed(t *testing.T) {
	raw := gvizPrefix + "{not json at all, definitely}" + gvizSuffix
	if _, err := ParseGviz(raw, ParseOptions{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err=%v want ErrMalformed", err)
	}
}

func TestParseGviz_InvalidShape(t *testing.T) {
	cases := []string{
		`{"status":"ok","padding":"xxxx"}`,
		`{"table":{"cols":[]},"status":"ok"}`,
		`{"table":{"rows":null},"status":"ok"}`,
	}
	for _, body := range cases {
		_, err := ParseGviz(gvizPrefix+body+gvizSuffix, ParseOptions{})
		if !errors.Is(err, ErrInvalidShape) {
			t.Fatalf("body=%s err=%v want ErrInvalidShape", body, err)
		}
	}
}

func TestParseGviz_HeaderOnlyIsEmptyCatalog(t *testing.T) {
	raw := gvizPayload(t, [][]any{headerRow})
	if _, err := ParseGviz(raw, ParseOptions{}); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("err=%v want ErrEmptyCatalog", err)
	}
}

func TestParseGviz_MapsRowsAndSkipsHeader(t *testing.T) {
	raw := gvizPayload(t, [][]any{
		headerRow,
		{"Date(2024,0,5)", "Mug", "Ceramic\nDishwasher safe", 12.5, "Kitchen", "https://img/mug.png", "https://shop/mug", "mug-1"},
		{"Date(2024,0,6)", "Poster", "", "n/a", "", nil, nil, nil},
	})

	got, err := ParseGviz(raw, ParseOptions{})
	if err != nil {
		t.Fatalf("ParseGviz: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d want 2", len(got))
	}

	want0 := Product{
		ID:              "mug-1",
		Title:           "Mug",
		Detail:          "Ceramic\nDishwasher safe",
		Price:           12.5,
		Category:        "Kitchen",
		ImageURL:        "https://img/mug.png",
		LinkURL:         "https://shop/mug",
		SourceTimestamp: "Date(2024,0,5)",
	}
	if got[0] != want0 {
		t.Fatalf("row0=%+v\nwant %+v", got[0], want0)
	}

	want1 := Product{
		ID:              "product-2",
		Title:           "Poster",
		Detail:          DefaultDetail,
		Price:           0,
		Category:        "",
		ImageURL:        PlaceholderImage,
		LinkURL:         DefaultLink,
		SourceTimestamp: "Date(2024,0,6)",
	}
	if got[1] != want1 {
		t.Fatalf("row1=%+v\nwant %+v", got[1], want1)
	}
}

func TestParseGviz_NonNumericPriceIsZero(t *testing.T) {
	for _, price := range []any{"abc", "$12", "", "-5", "NaN", "Inf", true} {
		raw := gvizPayload(t, [][]any{headerRow, {"", "Thing", "", price}})
		got, err := ParseGviz(raw, ParseOptions{})
		if err != nil {
			t.Fatalf("price=%v: %v", price, err)
		}
		if got[0].Price != 0 {
			t.Fatalf("price=%v parsed to %v want 0", price, got[0].Price)
		}
	}
}

func TestParseGviz_NumericStringPrice(t *testing.T) {
	raw := gvizPayload(t, [][]any{headerRow, {"", "Thing", "", " 19.99 "}})
	got, err := ParseGviz(raw, ParseOptions{})
	if err != nil {
		t.Fatalf("ParseGviz: %v", err)
	}
	if got[0].Price != 19.99 {
		t.Fatalf("price=%v", got[0].Price)
	}
}

func TestParseGviz_DropUntitled(t *testing.T) {
	raw := gvizPayload(t, [][]any{
		headerRow,
		{"", "", "no title"},
		{"", "Named", ""},
	})

	kept, err := ParseGviz(raw, ParseOptions{})
	if err != nil {
		t.Fatalf("ParseGviz: %v", err)
	}
	if len(kept) != 2 || kept[0].Title != UntitledTitle {
		t.Fatalf("without drop: %+v", kept)
	}

	dropped, err := ParseGviz(raw, ParseOptions{DropUntitled: true})
	if err != nil {
		t.Fatalf("ParseGviz: %v", err)
	}
	if len(dropped) != 1 || dropped[0].Title != "Named" {
		t.Fatalf("with drop: %+v", dropped)
	}

	onlyUntitled := gvizPayload(t, [][]any{headerRow, {"", " "}})
	if _, err := ParseGviz(onlyUntitled, ParseOptions{DropUntitled: true}); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("err=%v want ErrEmptyCatalog", err)
	}
}

func TestParseGviz_DuplicateIDsGetPositionalPlaceholder(t *testing.T) {
	raw := gvizPayload(t, [][]any{
		headerRow,
		{"", "A", "", 1, "", "", "", "same"},
		{"", "B", "", 2, "", "", "", "same"},
	})
	got, err := ParseGviz(raw, ParseOptions{})
	if err != nil {
		t.Fatalf("ParseGviz: %v", err)
	}
	if got[0].ID != "same" || got[1].ID != "product-2" {
		t.Fatalf("ids=%q,%q", got[0].ID, got[1].ID)
	}
}

func TestParseGviz_PlaceholderNeverCollidesWithExplicitID(t *testing.T) {
	tests := []struct {
		name string
		ids  []any
		want []string
	}{
		{name: "explicit before blank", ids: []any{"product-2", ""}, want: []string{"product-2", "product-2-2"}},
		{name: "blank before explicit", ids: []any{"", "product-1"}, want: []string{"product-1-2", "product-1"}},
		{name: "duplicate lands on explicit", ids: []any{"x", "x", "product-2"}, want: []string{"x", "product-2-2", "product-2"}},
		{name: "suffix taken too", ids: []any{"product-3", "product-3-2", ""}, want: []string{"product-3", "product-3-2", "product-3-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := [][]any{headerRow}
			for i, id := range tt.ids {
				rows = append(rows, []any{"", "T" + strconv.Itoa(i), "", 1, "", "", "", id})
			}

			got, err := ParseGviz(gvizPayload(t, rows), ParseOptions{})
			if err != nil {
				t.Fatalf("ParseGviz: %v", err)
			}

			seen := map[string]bool{}
			for i, p := range got {
				if seen[p.ID] {
					t.Fatalf("duplicate id %q in %+v", p.ID, got)
				}
				seen[p.ID] = true
				if p.ID != tt.want[i] {
					t.Fatalf("row %d id=%q want %q", i, p.ID, tt.want[i])
				}
			}
		})
	}
}

func TestParseGviz_OutputNeverExceedsDataRows(t *testing.T) {
	for n := 1; n <= 6; n++ {
		rows := [][]any{headerRow}
		for i := 0; i < n; i++ {
			title := "T"
			if i%2 == 0 {
				title = ""
			}
			rows = append(rows, []any{"", title})
		}
		for _, drop := range []bool{false, true} {
			got, err := ParseGviz(gvizPayload(t, rows), ParseOptions{DropUntitled: drop})
			if err != nil && !errors.Is(err, ErrEmptyCatalog) {
				t.Fatalf("n=%d: %v", n, err)
			}
			if len(got) > len(rows)-1 {
				t.Fatalf("n=%d drop=%v: got %d products from %d data rows", n, drop, len(got), len(rows)-1)
			}
		}
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Kind: ParseMalformed, Cause: errors.New("boom")}
	if !strings.Contains(err.Error(), "malformed") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("message=%q", err.Error())
	}
	if ParseInvalidShape.String() != "invalid_shape" {
		t.Fatalf("kind string=%q", ParseInvalidShape.String())
	}
}
