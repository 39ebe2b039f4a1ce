package pubsub

import "testing"

func TestHub_PublishOnlyToKey(t *testing.T) {
	h := NewHub[string](4)

	a, releaseA := h.Subscribe("agent-a")
	defer releaseA()
	b, releaseB := h.Subscribe("agent-b")
	defer releaseB()

	if n := h.Publish("agent-a", "share-1"); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}

	if got := <-a; got != "share-1" {
		t.Fatalf("unexpected value %q", got)
	}
	select {
	case v := <-b:
		t.Fatalf("agent-b should not receive, got %q", v)
	default:
	}
}

func TestHub_ReleaseRemovesAndCloses(t *testing.T) {
	h := NewHub[int](1)

	ch, release := h.Subscribe("k")
	if h.Subscribers("k") != 1 {
		t.Fatalf("expected 1 subscriber")
	}

	release()
	release() // idempotente

	if h.Subscribers("k") != 0 {
		t.Fatalf("expected listener to be released")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after release")
	}
	if n := h.Publish("k", 1); n != 0 {
		t.Fatalf("expected no deliveries after release, got %d", n)
	}
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub[int](1)
	_, release := h.Subscribe("k")
	defer release()

	if n := h.Publish("k", 1); n != 1 {
		t.Fatalf("expected first publish delivered")
	}
	if n := h.Publish("k", 2); n != 0 {
		t.Fatalf("expected second publish dropped, got %d", n)
	}
}
