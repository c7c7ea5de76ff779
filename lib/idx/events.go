package idx

import "context"

type EventKind int

const (
	EventResponse EventKind = iota
	EventToken
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventResponse:
		return "response"
	case EventToken:
		return "token"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is one outcome of a Flow operation. Exactly one of Response, Token
// or Err is set, according to Kind.
type Event struct {
	Kind     EventKind
	Response *Response
	Token    *Token
	Err      error
}

// Observer receives every Event a Flow produces, in order. Observers are
// called synchronously and must not call back into the Flow.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (fn ObserverFunc) Observe(e Event) { fn(e) }

// EventChannel returns an Observer that forwards events to a buffered
// channel. When the buffer is full the event is dropped, so a slow reader
// misses events. Use EventStream to receive every event.
func EventChannel(size int) (Observer, <-chan Event) {
	ch := make(chan Event, size)
	return ObserverFunc(func(e Event) {
		select {
		case ch <- e:
		default:
		}
	}), ch
}

// EventStream returns an Observer that delivers every event to a buffered
// channel. When the buffer is full the Flow operation producing the event
// waits for the reader. Once ctx is done events are discarded and the
// Flow no longer waits.
func EventStream(ctx context.Context, size int) (Observer, <-chan Event) {
	ch := make(chan Event, size)
	return ObserverFunc(func(e Event) {
		if ctx.Err() != nil {
			return
		}
		select {
		case ch <- e:
		case <-ctx.Done():
		}
	}), ch
}
