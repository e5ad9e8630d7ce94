package hittest

import "github.com/mattsolo1/grove-nodemanager/pkg/geom"

// PrimaryButton is the main pointer button.
const PrimaryButton = 0

// PointerEvent is a pointer event from the host's input surface. The router
// marks it consumed so the host skips its own handling.
type PointerEvent struct {
	Screen geom.Point
	Button int

	propagationStopped bool
	immediateStopped   bool
	defaultPrevented   bool
}

// NewPointerEvent creates a primary-button event at a screen position.
func NewPointerEvent(x, y float64) *PointerEvent {
	return &PointerEvent{Screen: geom.Point{X: x, Y: y}, Button: PrimaryButton}
}

func (e *PointerEvent) StopPropagation()          { e.propagationStopped = true }
func (e *PointerEvent) StopImmediatePropagation() { e.immediateStopped = true }
func (e *PointerEvent) PreventDefault()           { e.defaultPrevented = true }

// Consumed reports whether the host must skip default handling and other
// listeners.
func (e *PointerEvent) Consumed() bool {
	return e.propagationStopped && e.immediateStopped && e.defaultPrevented
}

func (e *PointerEvent) consume() {
	e.StopPropagation()
	e.StopImmediatePropagation()
	e.PreventDefault()
}
