// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/events.go
// Summary: Event fan-out from the grid engine to renderer and transport.
// Usage: The manager broadcasts engine events; the renderer and the input
//        forwarder subscribe as listeners.

package grid

import "sync"

// EventType defines the type of an engine event.
type EventType int

const (
	// EventFlush marks the end of an applied batch; dirty state is now
	// consistent and visible to the renderer.
	EventFlush EventType = iota
	EventBell
	EventVisualBell
	EventTitleChanged
	EventIconChanged
	EventPixelSizeChanged
	EventBackgroundChanged
	EventFontChanged
	EventGridCreated
	EventGridDestroyed
)

// Event is a message passed from the engine to its collaborators. Grid
// carries the originating grid id where one applies.
type Event struct {
	Type    EventType
	Grid    int
	Payload interface{}
}

// PixelSize is the payload of EventPixelSizeChanged.
type PixelSize struct {
	Width  int
	Height int
}

// Listener receives engine events.
type Listener interface {
	OnEvent(event Event)
}

// EventDispatcher manages a list of listeners and broadcasts events to them.
type EventDispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEventDispatcher creates a new dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		listeners: make([]Listener, 0),
	}
}

// Subscribe adds a new listener to receive events.
func (d *EventDispatcher) Subscribe(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, listener)
}

// Unsubscribe removes a listener.
func (d *EventDispatcher) Unsubscribe(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l == listener {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			break
		}
	}
}

// Broadcast sends an event to all subscribed listeners.
func (d *EventDispatcher) Broadcast(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, l := range d.listeners {
		l.OnEvent(event)
	}
}
