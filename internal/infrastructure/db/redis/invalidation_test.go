package redis

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSessionInvalidations_OtherInstancesEvict(t *testing.T) {
	_, client := newTestClient(t)
	a := NewSessionInvalidations(client, "instance-a")
	b := NewSessionInvalidations(client, "instance-b")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	evicted := map[string][]string{}
	listen := func(name string, s *SessionInvalidations) {
		go func() {
			_ = s.Listen(ctx, func(sid string) {
				mu.Lock()
				evicted[name] = append(evicted[name], sid)
				mu.Unlock()
			})
		}()
	}
	listen("a", a)
	listen("b", b)

	// The subscription is asynchronous; republish until b has seen it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := a.Publish(ctx, "sid-1"); err != nil {
			t.Fatalf("Publish returned error: %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		gotB := len(evicted["b"])
		mu.Unlock()
		if gotB > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("instance b never evicted sid-1")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if evicted["b"][0] != "sid-1" {
		t.Fatalf("unexpected eviction: %v", evicted["b"])
	}
	if len(evicted["a"]) != 0 {
		t.Fatalf("publisher must ignore its own messages, got %v", evicted["a"])
	}
}

func TestSessionInvalidations_ListenStopsOnCancel(t *testing.T) {
	_, client := newTestClient(t)
	s := NewSessionInvalidations(client, "instance-a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Listen(ctx, func(string) {}) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Listen did not return after cancel")
	}
}
