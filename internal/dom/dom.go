// Package dom is the port to the rendering layer. The pipeline never
// decides where a method's mount point lives on screen; it only receives
// elements through MountFunc callbacks and interacts with them through the
// Element interface. The rendering layer (or a test) supplies the
// implementation.
package dom

// Event is an interaction event delivered to a listener, e.g. a click on a
// submit control.
type Event struct {
	Type string
	// Data carries renderer-specific event details, if any.
	Data map[string]string
}

// Element is one mount point or sub-element supplied by the rendering
// layer.
type Element interface {
	// ID returns the element id, possibly empty.
	ID() string
	// SetID assigns an id, used when a container arrives without one.
	SetID(id string)
	// Query resolves a selector ("#id" or `[type="submit"]`) against the
	// element's subtree and returns nil when nothing matches.
	Query(selector string) Element
	// Dataset exposes the element's data-* attributes.
	Dataset() map[string]string
	// On registers a listener for the named event and returns a function
	// that removes it.
	On(event string, fn func(Event)) (remove func())
	// Focus moves input focus to the element.
	Focus()
	// SetEnabled toggles interactivity; a disabled control must not
	// dispatch events.
	SetEnabled(enabled bool)
	// AddClass and RemoveClass toggle presentation markers such as
	// eligibility classes.
	AddClass(name string)
	RemoveClass(name string)
}

// MountFunc binds a method's interactive behavior to an element. The
// rendering layer invokes it with the element on attach and with nil on
// detach; implementations must tolerate nil and be idempotent when called
// again with the same element.
type MountFunc func(el Element)

// EventClick is the event name adapters listen for on their controls.
const EventClick = "click"
