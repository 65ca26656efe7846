package query

import (
	"testing"

	"github.com/predkv/predkv/internal/core/domain"
	"github.com/predkv/predkv/internal/storage/memory"
)

func seededStore() *memory.Store {
	s := memory.New()
	s.Set(domain.Int(1), domain.Int(123))
	s.Set(domain.String("1a2b3c"), domain.String("John"))
	s.Set(domain.Int(10), domain.String("Radu-Mihai"))
	s.Set(domain.Int(15), domain.String("Onescu"))
	return s
}

func mustParse(t *testing.T, q string) ParsedQuery {
	t.Helper()
	parsed, err := Parse(q)
	if err != nil {
		t.Fatalf("Parse(%q): %v", q, err)
	}
	return parsed
}

// entrySet ignores order; scan order over the snapshot is unspecified.
func entrySet(entries []domain.Entry) map[domain.Entry]bool {
	set := make(map[domain.Entry]bool, len(entries))
	for _, e := range entries {
		set[e] = true
	}
	return set
}

func TestKeyEqualityDirectLookup(t *testing.T) {
	store := seededStore()
	exec := NewExecutor(store)

	got := exec.Execute(mustParse(t, "read key = int ( 1 )"))
	if len(got) != 1 || got[0] != (domain.Entry{Key: domain.Int(1), Value: domain.Int(123)}) {
		t.Fatalf("matches = %+v", got)
	}

	// Absent key: zero matches, not an error.
	got = exec.Execute(mustParse(t, "read key = int ( 99 )"))
	if len(got) != 0 {
		t.Fatalf("matches for absent key = %+v", got)
	}
}

func TestKeyRangeScan(t *testing.T) {
	exec := NewExecutor(seededStore())

	got := entrySet(exec.Execute(mustParse(t, "read key > int ( 5 )")))
	want := entrySet([]domain.Entry{
		{Key: domain.Int(10), Value: domain.String("Radu-Mihai")},
		{Key: domain.Int(15), Value: domain.String("Onescu")},
	})
	if len(got) != len(want) {
		t.Fatalf("matches = %v, want %v", got, want)
	}
	for e := range want {
		if !got[e] {
			t.Fatalf("missing match %+v in %v", e, got)
		}
	}
}

func TestValueEqualityScan(t *testing.T) {
	exec := NewExecutor(seededStore())

	got := exec.Execute(mustParse(t, "read value = John"))
	if len(got) != 1 || got[0].Key != domain.String("1a2b3c") {
		t.Fatalf("matches = %+v", got)
	}
}

func TestDeleteContainsRemovesMatches(t *testing.T) {
	store := seededStore()
	exec := NewExecutor(store)

	got := exec.Execute(mustParse(t, "delete value contains Mihai"))
	if len(got) != 1 || got[0].Key != domain.Int(10) {
		t.Fatalf("deleted = %+v", got)
	}
	if _, ok := store.Get(domain.Int(10)); ok {
		t.Fatal("matched entry still present after delete query")
	}

	// A second identical query finds nothing.
	got = exec.Execute(mustParse(t, "delete value contains Mihai"))
	if len(got) != 0 {
		t.Fatalf("second delete matched %+v", got)
	}
}

func TestDeleteKeyEquality(t *testing.T) {
	store := seededStore()
	exec := NewExecutor(store)

	got := exec.Execute(mustParse(t, "delete key = int ( 15 )"))
	if len(got) != 1 {
		t.Fatalf("deleted = %+v", got)
	}
	if _, ok := store.Get(domain.Int(15)); ok {
		t.Fatal("key still present after delete")
	}
}

func TestCrossKindComparisonsSkip(t *testing.T) {
	exec := NewExecutor(seededStore())

	// String keys are silently skipped when compared against an int.
	got := exec.Execute(mustParse(t, "read key >= int ( 0 )"))
	for _, e := range got {
		if e.Key.Kind() == domain.KindString {
			t.Fatalf("string key matched an int comparison: %+v", e)
		}
	}

	// Integer values never match a substring test.
	got = exec.Execute(mustParse(t, "read value contains 2"))
	for _, e := range got {
		if e.Value.Kind() != domain.KindString {
			t.Fatalf("non-string value matched contains: %+v", e)
		}
	}
}

func TestDeleteAllDuringScan(t *testing.T) {
	store := memory.New()
	for i := int64(0); i < 50; i++ {
		store.Set(domain.Int(i), domain.String("bulk"))
	}
	exec := NewExecutor(store)

	got := exec.Execute(mustParse(t, "delete value contains bulk"))
	if len(got) != 50 {
		t.Fatalf("deleted %d entries, want 50", len(got))
	}
	if store.Len() != 0 {
		t.Fatalf("store has %d entries left", store.Len())
	}
}
