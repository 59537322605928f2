package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// The gviz endpoint wraps its JSON in a JavaScript callback:
//
//	/*O_o*/
//	google.visualization.Query.setResponse({...});
const (
	gvizPrefix    = "/*O_o*/\ngoogle.visualization.Query.setResponse("
	gvizSuffix    = ");"
	minPayloadLen = len(gvizPrefix) + len(gvizSuffix) + len("{}")
)

// ParseKind classifies why a payload could not become a catalog.
type ParseKind int

const (
	ParseEmpty ParseKind = iota + 1
	ParseMalformed
	ParseInvalidShape
	ParseEmptyCatalog
)

var (
	ErrEmpty        = errors.New("catalog payload too short")
	ErrMalformed    = errors.New("catalog payload malformed")
	ErrInvalidShape = errors.New("catalog payload has no table rows")
	ErrEmptyCatalog = errors.New("catalog has no products")
)

func (k ParseKind) sentinel() error {
	switch k {
	case ParseEmpty:
		return ErrEmpty
	case ParseMalformed:
		return ErrMalformed
	case ParseInvalidShape:
		return ErrInvalidShape
	case ParseEmptyCatalog:
		return ErrEmptyCatalog
	default:
		return errors.New("catalog parse error")
	}
}

func (k ParseKind) String() string {
	switch k {
	case ParseEmpty:
		return "empty"
	case ParseMalformed:
		return "malformed"
	case ParseInvalidShape:
		return "invalid_shape"
	case ParseEmptyCatalog:
		return "empty_catalog"
	default:
		return "unknown"
	}
}

// ParseError says why a payload was rejected. errors.Is matches it against
// the sentinel for its Kind.
type ParseError struct {
	Kind  ParseKind
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Cause)
	}
	return e.Kind.sentinel().Error()
}

func (e *ParseError) Is(target error) bool { return target == e.Kind.sentinel() }

func (e *ParseError) Unwrap() error { return e.Cause }

type ParseOptions struct {
	// DropUntitled removes rows whose title fell back to UntitledTitle.
	DropUntitled bool
}

type gvizResponse struct {
	Table *struct {
		Rows *[]gvizRow `json:"rows"`
	} `json:"table"`
}

type gvizRow struct {
	C []*gvizCell `json:"c"`
}

type gvizCell struct {
	V any `json:"v"`
}

// ParseGviz turns a gviz JSON-in-JS response into products. The first row is
// a header and never becomes a product.
func ParseGviz(raw string, opts ParseOptions) ([]Product, error) {
	if len(raw) < minPayloadLen {
		return nil, &ParseError{Kind: ParseEmpty}
	}

	body := raw[len(gvizPrefix) : len(raw)-len(gvizSuffix)]

	var resp gvizResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, &ParseError{Kind: ParseMalformed, Cause: err}
	}
	if resp.Table == nil || resp.Table.Rows == nil {
		return nil, &ParseError{Kind: ParseInvalidShape}
	}

	rows := make([][]string, 0, len(*resp.Table.Rows))
	for _, r := range *resp.Table.Rows {
		cells := make([]string, len(r.C))
		for i, c := range r.C {
			if c != nil {
				cells[i] = cellString(c.V)
			}
		}
		rows = append(rows, cells)
	}

	return buildCatalog(rows, opts)
}

// buildCatalog skips the header row, maps the rest and applies options.
// Ids are unique within the result: explicit ids are reserved first, then
// blank or repeated ids get the positional placeholder, suffixed until free.
func buildCatalog(rows [][]string, opts ParseOptions) ([]Product, error) {
	if len(rows) <= 1 {
		return nil, &ParseError{Kind: ParseEmptyCatalog}
	}

	type row struct {
		p        Product
		explicit bool
		pos      int
	}

	kept := make([]row, 0, len(rows)-1)
	reserved := make(map[string]struct{}, len(rows)-1)
	for i, cells := range rows[1:] {
		p := productFromCells(cells, i+1)
		if opts.DropUntitled && p.Title == UntitledTitle {
			continue
		}
		explicit := sourceID(cells) != ""
		if explicit {
			reserved[p.ID] = struct{}{}
		}
		kept = append(kept, row{p: p, explicit: explicit, pos: i + 1})
	}

	if len(kept) == 0 {
		return nil, &ParseError{Kind: ParseEmptyCatalog}
	}

	out := make([]Product, 0, len(kept))
	claimed := make(map[string]struct{}, len(kept))
	for _, r := range kept {
		p := r.p
		_, dup := claimed[p.ID]
		if !r.explicit || dup {
			p.ID = freeID(placeholderID(r.pos), reserved, claimed)
		}
		claimed[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func sourceID(cells []string) string {
	if colID < len(cells) {
		return strings.TrimSpace(cells[colID])
	}
	return ""
}

// freeID returns base, or base-2, base-3, ... whichever is first unused.
func freeID(base string, reserved, claimed map[string]struct{}) string {
	id := base
	for k := 2; ; k++ {
		_, r := reserved[id]
		_, c := claimed[id]
		if !r && !c {
			return id
		}
		id = base + "-" + strconv.Itoa(k)
	}
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
