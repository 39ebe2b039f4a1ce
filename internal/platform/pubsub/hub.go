// Package pubsub es un fan-out en proceso, por key, con entrega best-effort.
package pubsub

import "sync"

const DefaultBuffer = 16

// Hub reparte valores a los suscriptores de una key (p.ej. recipient id).
// Publish nunca bloquea: si el buffer del suscriptor está lleno, el valor se descarta.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]chan T
	next   uint64
	buffer int
}

func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub[T]{
		subs:   make(map[string]map[uint64]chan T),
		buffer: buffer,
	}
}

// Subscribe registra un listener para key. La función devuelta lo libera y cierra el
// canal; es idempotente.
func (h *Hub[T]) Subscribe(key string) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	ch := make(chan T, h.buffer)

	if h.subs[key] == nil {
		h.subs[key] = make(map[uint64]chan T)
	}
	h.subs[key][id] = ch

	var once sync.Once
	release := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if byID, ok := h.subs[key]; ok {
				delete(byID, id)
				if len(byID) == 0 {
					delete(h.subs, key)
				}
			}
			close(ch)
		})
	}
	return ch, release
}

// Publish devuelve cuántos suscriptores recibieron el valor.
func (h *Hub[T]) Publish(key string, v T) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, ch := range h.subs[key] {
		select {
		case ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers cuenta listeners activos para key.
func (h *Hub[T]) Subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key])
}
