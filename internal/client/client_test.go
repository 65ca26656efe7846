package client

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/predkv/predkv/internal/core/domain"
	"github.com/predkv/predkv/internal/server/kvserver"
	"github.com/predkv/predkv/internal/storage/memory"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := kvserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := kvserver.New(cfg, memory.New(), logger, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("server Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

func mustDial(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDialRefused(t *testing.T) {
	// Port from the dynamic range with nothing listening.
	if _, err := DialTimeout("127.0.0.1:1", time.Second); err == nil {
		t.Fatal("Dial to a closed port succeeded")
	}
}

// TestClientSession walks the canonical usage sequence end to end:
// adds of mixed-kind keys and values, a failing read, value and key
// queries, a delete query, and a query with a bad element name.
func TestClientSession(t *testing.T) {
	addr := startServer(t)
	c := mustDial(t, addr)

	steps := []struct {
		key, value domain.Value
	}{
		{domain.Int(1), domain.Int(123)},
		{domain.String("1a2b3c"), domain.String("John")},
		{domain.Int(10), domain.String("Radu-Mihai")},
		{domain.Int(15), domain.String("Onescu")},
	}
	for _, s := range steps {
		resp, err := c.Add(s.key, s.value)
		if err != nil {
			t.Fatalf("Add(%v) transport error: %v", s.key, err)
		}
		if !resp.Success {
			t.Fatalf("Add(%v) failed: %q", s.key, resp.Message)
		}
	}

	resp, err := c.Read(domain.Int(2))
	if err != nil {
		t.Fatalf("Read transport error: %v", err)
	}
	if resp.Success {
		t.Fatal("Read of absent key succeeded")
	}
	if resp.Message != "Entry does not exist." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Entry does not exist.")
	}

	resp, err = c.Query("read value = John")
	if err != nil {
		t.Fatalf("Query transport error: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 {
		t.Fatalf("value query = %+v, want one match", resp)
	}
	if !resp.Data[0].Key.Equal(domain.String("1a2b3c")) {
		t.Fatalf("matched key = %v, want 1a2b3c", resp.Data[0].Key)
	}

	resp, err = c.Query("read key > int ( 5 )")
	if err != nil {
		t.Fatalf("Query transport error: %v", err)
	}
	if !resp.Success || len(resp.Data) != 2 {
		t.Fatalf("key query matched %d entries, want 2", len(resp.Data))
	}

	resp, err = c.Query("delete value contains Mihai")
	if err != nil {
		t.Fatalf("Query transport error: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 {
		t.Fatalf("delete query = %+v, want one match", resp)
	}

	resp, err = c.Read(domain.Int(10))
	if err != nil {
		t.Fatalf("Read transport error: %v", err)
	}
	if resp.Success {
		t.Fatal("deleted entry still readable")
	}

	resp, err = c.Query("read something > int ( 5 )")
	if err != nil {
		t.Fatalf("Query transport error: %v", err)
	}
	if resp.Success {
		t.Fatal("query with bad element name succeeded")
	}
	if resp.Message != "Invalid query syntax." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Invalid query syntax.")
	}
}

func TestClientDeleteFlow(t *testing.T) {
	addr := startServer(t)
	c := mustDial(t, addr)

	if resp, err := c.Add(domain.String("k"), domain.Float(2.5)); err != nil || !resp.Success {
		t.Fatalf("Add failed: %v %+v", err, resp)
	}

	resp, err := c.Delete(domain.String("k"))
	if err != nil {
		t.Fatalf("Delete transport error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Delete failed: %q", resp.Message)
	}

	resp, err = c.Delete(domain.String("k"))
	if err != nil {
		t.Fatalf("Delete transport error: %v", err)
	}
	if resp.Success {
		t.Fatal("second Delete succeeded")
	}
	if resp.Message != "Entry could not be deleted." {
		t.Fatalf("Message = %q, want %q", resp.Message, "Entry could not be deleted.")
	}
}
