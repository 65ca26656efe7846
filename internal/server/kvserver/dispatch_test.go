package kvserver

import (
	"io"
	"log/slog"
	"testing"

	"github.com/predkv/predkv/internal/core/domain"
	"github.com/predkv/predkv/internal/storage/memory"
)

func newTestDispatcher() (*Dispatcher, *memory.Store) {
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(store, logger, nil), store
}

func TestDispatchAddThenRead(t *testing.T) {
	d, _ := newTestDispatcher()

	resp := d.Dispatch(domain.NewAdd(domain.Int(1), domain.Int(123)))
	if !resp.Success {
		t.Fatalf("add failed: %q", resp.Message)
	}
	if len(resp.Data) != 1 || !resp.Data[0].Value.Equal(domain.Int(123)) {
		t.Fatalf("add Data = %v, want the stored pair", resp.Data)
	}

	resp = d.Dispatch(domain.NewRead(domain.Int(1)))
	if !resp.Success {
		t.Fatalf("read failed: %q", resp.Message)
	}
	if len(resp.Data) != 1 || !resp.Data[0].Value.Equal(domain.Int(123)) {
		t.Fatalf("read Data = %v, want value 123", resp.Data)
	}
}

func TestDispatchReadMissing(t *testing.T) {
	d, _ := newTestDispatcher()

	resp := d.Dispatch(domain.NewRead(domain.Int(2)))
	if resp.Success {
		t.Fatal("read of absent key succeeded")
	}
	if resp.Message != "Entry does not exist." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Entry does not exist.")
	}
}

func TestDispatchAddOverwrites(t *testing.T) {
	d, store := newTestDispatcher()

	d.Dispatch(domain.NewAdd(domain.String("k"), domain.String("old")))
	resp := d.Dispatch(domain.NewAdd(domain.String("k"), domain.String("new")))
	if !resp.Success {
		t.Fatalf("overwrite failed: %q", resp.Message)
	}
	if v, _ := store.Get(domain.String("k")); !v.Equal(domain.String("new")) {
		t.Fatalf("stored value = %v, want new", v)
	}
}

func TestDispatchAddMissingFields(t *testing.T) {
	d, _ := newTestDispatcher()

	key := domain.Int(1)
	resp := d.Dispatch(&domain.Request{Type: domain.TypeAdd, Key: &key})
	if resp.Success {
		t.Fatal("add without value succeeded")
	}
	if resp.Message != "Entry could not be added." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Entry could not be added.")
	}
}

func TestDispatchDelete(t *testing.T) {
	d, store := newTestDispatcher()

	d.Dispatch(domain.NewAdd(domain.Int(1), domain.Int(123)))
	resp := d.Dispatch(domain.NewDelete(domain.Int(1)))
	if !resp.Success {
		t.Fatalf("delete failed: %q", resp.Message)
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d after delete, want 0", store.Len())
	}

	resp = d.Dispatch(domain.NewDelete(domain.Int(1)))
	if resp.Success {
		t.Fatal("delete of absent key succeeded")
	}
	if resp.Message != "Entry could not be deleted." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Entry could not be deleted.")
	}
}

func TestDispatchQuery(t *testing.T) {
	d, _ := newTestDispatcher()

	d.Dispatch(domain.NewAdd(domain.Int(10), domain.String("Radu-Mihai")))
	d.Dispatch(domain.NewAdd(domain.Int(15), domain.String("Onescu")))

	resp := d.Dispatch(domain.NewQuery("read key > int ( 9 )"))
	if !resp.Success {
		t.Fatalf("query failed: %q", resp.Message)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("query matched %d entries, want 2", len(resp.Data))
	}

	resp = d.Dispatch(domain.NewQuery("delete value contains Mihai"))
	if !resp.Success {
		t.Fatalf("delete query failed: %q", resp.Message)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("delete query matched %d entries, want 1", len(resp.Data))
	}

	resp = d.Dispatch(domain.NewQuery("read value = Radu-Mihai"))
	if !resp.Success || len(resp.Data) != 0 {
		t.Fatalf("deleted entry still matched: %v", resp.Data)
	}
}

func TestDispatchQuerySyntaxError(t *testing.T) {
	d, _ := newTestDispatcher()

	resp := d.Dispatch(domain.NewQuery("read something > int ( 5 )"))
	if resp.Success {
		t.Fatal("invalid query succeeded")
	}
	if resp.Message != "Invalid query syntax." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Invalid query syntax.")
	}
}

func TestDispatchUnknownType(t *testing.T) {
	d, _ := newTestDispatcher()

	resp := d.Dispatch(&domain.Request{Type: domain.RequestType(9)})
	if resp.Success {
		t.Fatal("unknown request type succeeded")
	}
	if resp.Message != "Request type does not exist." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Request type does not exist.")
	}
}

func TestDispatchEmptyDataIsNotNil(t *testing.T) {
	d, _ := newTestDispatcher()

	resp := d.Dispatch(domain.NewQuery("read value = nobody"))
	if !resp.Success {
		t.Fatalf("query failed: %q", resp.Message)
	}
	if resp.Data == nil {
		t.Fatal("Data is nil, want empty slice")
	}
}
