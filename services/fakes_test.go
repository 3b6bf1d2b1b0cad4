package services

import (
	"sync"
)

type sentEvent struct {
	Event   string
	Payload any
}

// fakeConn records every event it is sent.
type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []sentEvent
	closed bool
	reject bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(event string, payload any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject || f.closed {
		return false
	}
	f.events = append(f.events, sentEvent{Event: event, Payload: payload})
	return true
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) Events() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentEvent, len(f.events))
	copy(out, f.events)
	return out
}

// LastSnapshot returns the payload of the most recent getOnlineUsers event.
func (f *fakeConn) LastSnapshot() ([]string, bool) {
	events := f.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Event == "getOnlineUsers" {
			ids, ok := events[i].Payload.([]string)
			return ids, ok
		}
	}
	return nil, false
}
