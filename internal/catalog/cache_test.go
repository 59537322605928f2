package catalog

import (
	"context"
	"reflect"
	"testing"
	"time"

	"SheetStore/internal/storage"
)

var sampleProducts = []Product{
	{ID: "a", Title: "Alpha", Detail: "line1\nline2", Price: 10, Category: "X", ImageURL: "i", LinkURL: "l", SourceTimestamp: "t"},
	{ID: "b", Title: "Beta", Detail: DefaultDetail, Price: 0.5, Category: "", ImageURL: PlaceholderImage, LinkURL: DefaultLink},
}

func TestEntryFreshnessBoundary(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := Entry{Products: sampleProducts, FetchedAt: t0}

	if !e.IsFresh(t0.Add(3599 * time.Second)) {
		t.Fatalf("entry should be fresh at t+3599s")
	}
	if e.IsFresh(t0.Add(3601 * time.Second)) {
		t.Fatalf("entry should be stale at t+3601s")
	}
	if e.IsFresh(t0.Add(FreshnessWindow)) {
		t.Fatalf("entry should be stale exactly at the window")
	}
}

func TestKey_DistinctSourcesNeverCollide(t *testing.T) {
	a := Key("sheet_1", "2")
	b := Key("sheet", "1_2")
	c := Key("sheet:1", "2")
	d := Key("sheet", "1:2")
	seen := map[string]bool{}
	for _, k := range []string{a, b, c, d} {
		if seen[k] {
			t.Fatalf("collision on %q", k)
		}
		seen[k] = true
	}
	if Key("s", "g") != Key("s", "g") {
		t.Fatalf("key not stable")
	}
	if got := Key("S", "7"); got != "catalog:v1:products_S:7" {
		t.Fatalf("key=%q", got)
	}
}

func testCaches(t *testing.T, now func() time.Time) map[string]Cache {
	t.Helper()

	mem := NewMemCache()
	mem.now = now

	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	lite := NewSQLiteCache(db)
	lite.now = now

	return map[string]Cache{"memory": mem, "sqlite": lite}
}

func TestCache_RoundTrip(t *testing.T) {
	t0 := time.UnixMilli(1_700_000_000_123)
	for name, c := range testCaches(t, func() time.Time { return t0 }) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := c.Read(ctx, "missing"); ok || err != nil {
				t.Fatalf("missing key: ok=%v err=%v", ok, err)
			}

			if err := c.Write(ctx, "k", sampleProducts); err != nil {
				t.Fatalf("Write: %v", err)
			}
			e, ok, err := c.Read(ctx, "k")
			if err != nil || !ok {
				t.Fatalf("Read: ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(e.Products, sampleProducts) {
				t.Fatalf("products=%+v\nwant %+v", e.Products, sampleProducts)
			}
			if !e.FetchedAt.Equal(t0) {
				t.Fatalf("fetchedAt=%s want %s", e.FetchedAt, t0)
			}
			if err := c.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
		})
	}
}

func TestCache_WriteOverwrites(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	clock := func() time.Time { return now }

	for name, c := range testCaches(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := c.Write(ctx, "k", sampleProducts); err != nil {
				t.Fatalf("Write: %v", err)
			}
			now = now.Add(time.Minute)
			if err := c.Write(ctx, "k", sampleProducts[:1]); err != nil {
				t.Fatalf("Write: %v", err)
			}
			e, _, err := c.Read(ctx, "k")
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(e.Products) != 1 || !e.FetchedAt.Equal(now) {
				t.Fatalf("entry=%+v", e)
			}
		})
	}
}

func TestMemCache_IsolatedFromCallerMutation(t *testing.T) {
	c := NewMemCache()
	ctx := context.Background()

	in := cloneProducts(sampleProducts)
	_ = c.Write(ctx, "k", in)
	in[0].Title = "mutated"

	e, _, _ := c.Read(ctx, "k")
	if e.Products[0].Title != "Alpha" {
		t.Fatalf("cache shares memory with caller")
	}
	e.Products[1].Title = "mutated"
	again, _, _ := c.Read(ctx, "k")
	if again.Products[1].Title != "Beta" {
		t.Fatalf("cache shares memory with reader")
	}
}

func TestDecodeEntry_RejectsCorruptPayload(t *testing.T) {
	for _, raw := range []string{"", "{", `{"timestamp":1}`, `{"data":null}`} {
		if _, err := decodeEntry([]byte(raw)); err == nil {
			t.Fatalf("payload %q decoded without error", raw)
		}
	}
}

func TestEnvelopeLayout(t *testing.T) {
	b, err := encodeEntry(Entry{Products: sampleProducts[:1], FetchedAt: time.UnixMilli(42)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"data":[{"id":"a","title":"Alpha","detail":"line1\nline2","price":10,"category":"X","imageUrl":"i","linkUrl":"l","sourceTimestamp":"t"}],"timestamp":42}`
	if string(b) != want {
		t.Fatalf("layout=%s\nwant   %s", b, want)
	}
}
