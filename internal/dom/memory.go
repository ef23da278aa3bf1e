package dom

import (
	"strings"
	"sync"
)

// MemoryElement is an in-memory Element used by the demo host and by
// tests. It models just enough of a render tree for the pipeline: id
// lookup, a flat child list, data attributes, class list and click
// dispatch.
type MemoryElement struct {
	mu        sync.Mutex
	id        string
	attrs     map[string]string
	data      map[string]string
	classes   map[string]bool
	children  []*MemoryElement
	listeners map[string][]*listener
	enabled   bool
	focused   bool
	nextToken int
}

type listener struct {
	token int
	fn    func(Event)
}

// NewMemoryElement creates an element with the given id.
func NewMemoryElement(id string) *MemoryElement {
	return &MemoryElement{
		id:        id,
		attrs:     make(map[string]string),
		data:      make(map[string]string),
		classes:   make(map[string]bool),
		listeners: make(map[string][]*listener),
		enabled:   true,
	}
}

// Append adds a child element and returns it for chaining.
func (e *MemoryElement) Append(child *MemoryElement) *MemoryElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.children = append(e.children, child)
	return child
}

// SetAttr sets a plain attribute, e.g. "type"="submit".
func (e *MemoryElement) SetAttr(name, value string) *MemoryElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
	return e
}

// SetData sets a data-* attribute exposed through Dataset.
func (e *MemoryElement) SetData(name, value string) *MemoryElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data[name] = value
	return e
}

// ID implements Element.
func (e *MemoryElement) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// SetID implements Element.
func (e *MemoryElement) SetID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.id = id
}

// Query implements Element. Supported selector forms are "#id", "[attr]",
// `[attr="value"]` and comma-separated alternatives, matched across the
// element's subtree.
func (e *MemoryElement) Query(selector string) Element {
	for _, alt := range strings.Split(selector, ",") {
		if found := e.queryOne(strings.TrimSpace(alt)); found != nil {
			return found
		}
	}
	return nil
}

func (e *MemoryElement) queryOne(selector string) Element {
	e.mu.Lock()
	children := append([]*MemoryElement(nil), e.children...)
	e.mu.Unlock()

	for _, child := range children {
		if child.matches(selector) {
			return child
		}
		if found := child.queryOne(selector); found != nil {
			return found
		}
	}
	return nil
}

func (e *MemoryElement) matches(selector string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case strings.HasPrefix(selector, "#"):
		return e.id == selector[1:]
	case strings.HasPrefix(selector, "[") && strings.HasSuffix(selector, "]"):
		body := selector[1 : len(selector)-1]
		if name, value, ok := strings.Cut(body, "="); ok {
			value = strings.Trim(value, `"'`)
			return e.attrs[name] == value
		}
		_, present := e.attrs[body]
		return present
	default:
		return false
	}
}

// Dataset implements Element.
func (e *MemoryElement) Dataset() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.data))
	for k, v := range e.data {
		out[k] = v
	}
	return out
}

// On implements Element.
func (e *MemoryElement) On(event string, fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextToken++
	l := &listener{token: e.nextToken, fn: fn}
	e.listeners[event] = append(e.listeners[event], l)
	token := l.token
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		kept := e.listeners[event][:0]
		for _, cand := range e.listeners[event] {
			if cand.token != token {
				kept = append(kept, cand)
			}
		}
		e.listeners[event] = kept
	}
}

// Focus implements Element.
func (e *MemoryElement) Focus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focused = true
}

// Focused reports whether Focus was called, for assertions.
func (e *MemoryElement) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// SetEnabled implements Element.
func (e *MemoryElement) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// Enabled reports the current interactivity state.
func (e *MemoryElement) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// AddClass implements Element.
func (e *MemoryElement) AddClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes[name] = true
}

// RemoveClass implements Element.
func (e *MemoryElement) RemoveClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.classes, name)
}

// HasClass reports whether the class is set, for assertions.
func (e *MemoryElement) HasClass(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classes[name]
}

// Dispatch delivers an event to the element's listeners. Disabled
// elements drop events, matching a disabled control in a real renderer.
func (e *MemoryElement) Dispatch(ev Event) {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	fns := make([]func(Event), 0, len(e.listeners[ev.Type]))
	for _, l := range e.listeners[ev.Type] {
		fns = append(fns, l.fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Click is shorthand for dispatching a click event.
func (e *MemoryElement) Click() {
	e.Dispatch(Event{Type: EventClick})
}
