package memory

import (
	"sync"
	"testing"

	"github.com/predkv/predkv/internal/core/domain"
)

func TestStoreSetGetRemove(t *testing.T) {
	s := New()

	s.Set(domain.Int(1), domain.Int(123))
	if v, ok := s.Get(domain.Int(1)); !ok || v != domain.Int(123) {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	// Set overwrites an existing key.
	s.Set(domain.Int(1), domain.String("replaced"))
	if v, _ := s.Get(domain.Int(1)); v != domain.String("replaced") {
		t.Fatalf("Get after overwrite = %v", v)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	if !s.Remove(domain.Int(1)) {
		t.Fatal("Remove existing = false")
	}
	if s.Remove(domain.Int(1)) {
		t.Fatal("Remove absent = true")
	}
	if _, ok := s.Get(domain.Int(1)); ok {
		t.Fatal("Get after Remove found entry")
	}
}

func TestSnapshotViewIsolation(t *testing.T) {
	s := New()
	s.Set(domain.Int(10), domain.String("Radu-Mihai"))
	s.Set(domain.Int(15), domain.String("Onescu"))

	view := s.SnapshotView()
	if len(view) != 2 {
		t.Fatalf("len(view) = %d, want 2", len(view))
	}

	// Mutating the live store must not be visible in an existing view.
	s.Remove(domain.Int(10))
	s.Set(domain.Int(99), domain.Int(99))
	if len(view) != 2 {
		t.Fatalf("view changed after mutation: len = %d", len(view))
	}
}

func TestReplaceAll(t *testing.T) {
	s := New()
	s.Set(domain.String("old"), domain.Int(1))

	s.ReplaceAll([]domain.Entry{
		{Key: domain.Int(1), Value: domain.Int(123)},
		{Key: domain.String("1a2b3c"), Value: domain.String("John")},
	})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if _, ok := s.Get(domain.String("old")); ok {
		t.Fatal("ReplaceAll kept a stale entry")
	}
	if v, ok := s.Get(domain.String("1a2b3c")); !ok || v != domain.String("John") {
		t.Fatalf("Get restored entry = %v, %v", v, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			for j := int64(0); j < 100; j++ {
				s.Set(domain.Int(n*1000+j), domain.Int(j))
				s.Get(domain.Int(n*1000+j))
				s.SnapshotView()
			}
		}(int64(i))
	}
	wg.Wait()

	if s.Len() != 800 {
		t.Fatalf("Len = %d, want 800", s.Len())
	}
}
