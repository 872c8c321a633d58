package event

import (
	"reflect"
)

// Bus delivers typed events synchronously to subscribers in registration
// order. Publish runs on the caller's goroutine, so handlers observe the
// world exactly as the publisher left it. Game loop goroutine only.
type Bus struct {
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]any),
	}
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Publish calls every handler subscribed to T. A nil bus drops the event.
func Publish[T any](b *Bus, ev T) {
	if b == nil {
		return
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	for _, h := range b.handlers[t] {
		h.(func(T))(ev)
	}
}

// HandlerCount reports how many handlers are subscribed to T.
func HandlerCount[T any](b *Bus) int {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return len(b.handlers[t])
}
