package world

import (
	"github.com/SakulFlee/Orbital/engine/input"
)

// Element is a world entity. Elements never touch GPU resources or other
// elements directly: every hook returns changes that the world applies
// through its queue, and cross-element communication goes through tagged
// messages.
type Element interface {
	// OnRegistration is called once when the element is spawned. The returned
	// changes typically spawn the element's models, lights, or cameras; the
	// world records spawned models against the element so a despawn releases
	// them.
	//
	// Returns:
	//   - []Change: changes to enqueue, nil for none
	OnRegistration() []Change

	// OnUpdate is called once per world update.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous update
	//
	// Returns:
	//   - []Change: changes to enqueue, nil for none
	OnUpdate(deltaTime float64) []Change

	// OnMessage is called for each message addressed to one of the element's
	// tags.
	//
	// Parameters:
	//   - message: the message content
	//
	// Returns:
	//   - []Change: changes to enqueue, nil for none
	OnMessage(message Message) []Change

	// OnInputEvent is called for each input event drained during the update.
	//
	// Parameters:
	//   - event: the input event
	//
	// Returns:
	//   - []Change: changes to enqueue, nil for none
	OnInputEvent(event input.Event) []Change

	// OnFocusChange is called when the window gains or loses focus.
	//
	// Parameters:
	//   - focused: true when the window gained focus
	//
	// Returns:
	//   - []Change: changes to enqueue, nil for none
	OnFocusChange(focused bool) []Change
}

// BaseElement is a no-op Element implementation meant for embedding, so
// concrete elements only override the hooks they care about.
type BaseElement struct{}

var _ Element = BaseElement{}

func (BaseElement) OnRegistration() []Change                { return nil }
func (BaseElement) OnUpdate(deltaTime float64) []Change     { return nil }
func (BaseElement) OnMessage(message Message) []Change      { return nil }
func (BaseElement) OnInputEvent(event input.Event) []Change { return nil }
func (BaseElement) OnFocusChange(focused bool) []Change     { return nil }
