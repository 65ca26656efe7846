package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHooksRunInReverseOrder(t *testing.T) {
	h := NewHandler(5*time.Second, testLogger())

	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	h.OnShutdown("engine", record("engine"))
	h.OnShutdown("metrics", record("metrics"))
	h.OnShutdown("server", record("server"))

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	h.Trigger()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return")
	}

	want := []string{"server", "metrics", "engine"}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != len(want) {
		t.Fatalf("ran %d hooks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestFirstHookErrorIsReturned(t *testing.T) {
	h := NewHandler(5*time.Second, testLogger())

	errServer := errors.New("server close failed")
	ran := false
	h.OnShutdown("engine", func(context.Context) error {
		ran = true
		return nil
	})
	h.OnShutdown("server", func(context.Context) error { return errServer })

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	h.Trigger()

	if err := <-errCh; !errors.Is(err, errServer) {
		t.Fatalf("Wait error = %v, want %v", err, errServer)
	}
	if !ran {
		t.Fatal("later hook error skipped remaining hooks")
	}
}

func TestDoneClosesAfterWait(t *testing.T) {
	h := NewHandler(time.Second, testLogger())

	select {
	case <-h.Done():
		t.Fatal("Done closed before shutdown")
	default:
	}

	go func() { _ = h.Wait() }()
	h.Trigger()

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done did not close")
	}
}

func TestTriggerIsIdempotent(t *testing.T) {
	h := NewHandler(time.Second, testLogger())
	go func() { _ = h.Wait() }()
	h.Trigger()
	h.Trigger()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done did not close")
	}
}
