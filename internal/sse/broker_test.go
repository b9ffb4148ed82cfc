package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "dataset.created", Data: map[string]string{"path": "a.json"}})
	b.Publish(Event{Type: "dataset.updated", Data: map[string]string{"path": "a.json"}})

	for i, want := range []string{"id: 1\nevent: dataset.created\n", "id: 2\nevent: dataset.updated\n"} {
		select {
		case msg := <-ch:
			s := string(msg)
			if !strings.HasPrefix(s, want) {
				t.Errorf("message %d = %q, want prefix %q", i, s, want)
			}
			if !strings.Contains(s, `"path":"a.json"`) {
				t.Errorf("missing data in %q", s)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

// drain collects every message currently buffered on ch.
func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func countType(msgs []string, typ string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, "event: "+typ+"\n") {
			n++
		}
	}
	return n
}

func TestPublishDatasetEvent_Throttle(t *testing.T) {
	b := NewBroker(300 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event emits people.changed right away; the next two fall inside
	// the throttle window and are folded into one trailing event.
	b.PublishDatasetEvent(KindCreated, "a.json")
	b.PublishDatasetEvent(KindUpdated, "b.json")
	b.PublishDatasetEvent(KindUpdated, "b.json")

	time.Sleep(50 * time.Millisecond)
	first := drain(ch)
	if n := countType(first, "dataset.created") + countType(first, "dataset.updated"); n != 3 {
		t.Errorf("dataset events = %d, want 3", n)
	}
	if n := countType(first, EventPeopleChanged); n != 1 {
		t.Errorf("people.changed before window end = %d, want 1", n)
	}

	time.Sleep(400 * time.Millisecond)
	second := drain(ch)
	if n := countType(second, EventPeopleChanged); n != 1 {
		t.Fatalf("trailing people.changed = %d, want 1", n)
	}
	if !strings.Contains(second[0], `{"paths":["b.json"]}`) {
		t.Errorf("trailing event = %q", second[0])
	}
}

func TestPublishDatasetEvent_IgnoresUnknownKind(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDatasetEvent("renamed", "a.json")
	time.Sleep(50 * time.Millisecond)
	if msgs := drain(ch); len(msgs) != 0 {
		t.Errorf("unexpected messages %q", msgs)
	}
}

type syncRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishDatasetEvent(KindDeleted, "x.json")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	for _, want := range []string{"retry: 100\n", "event: dataset.deleted", "event: people.changed"} {
		if !strings.Contains(body, want) {
			t.Errorf("handler output missing %q: %q", want, body)
		}
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest are dropped without blocking the loop.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	if b.ClientCount() != 1 {
		t.Error("broker loop should stay responsive")
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "dataset.updated", Data: map[string]string{"path": "x.json"}})
	b.PublishDatasetEvent(KindUpdated, "x.json")
	b.Close()
}
