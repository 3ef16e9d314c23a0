// package input collects keyboard, mouse, and gamepad events into a single
// queue drained synchronously by the engine tick. Window callbacks and the
// gamepad poll goroutine only ever push; the world is mutated from the tick
// alone.
package input

// Event is an input event delivered to world elements. Variants are the
// concrete types below.
type Event interface {
	isEvent()
}

// KeyState distinguishes press and release events.
type KeyState uint8

const (
	// Pressed marks a key or button going down.
	Pressed KeyState = iota

	// Released marks a key or button going up.
	Released
)

// KeyEvent is a keyboard key press or release.
type KeyEvent struct {
	// KeyCode is the platform virtual key code.
	KeyCode uint32

	// State is Pressed or Released.
	State KeyState
}

// MouseButtonEvent is a mouse button press or release.
type MouseButtonEvent struct {
	// Button is the platform mouse button index.
	Button uint32

	// State is Pressed or Released.
	State KeyState

	// X, Y is the cursor position in pixels at the time of the event.
	X, Y int32
}

// MouseMoveEvent reports the cursor position in pixels.
type MouseMoveEvent struct {
	X, Y int32
}

// ScrollEvent reports scroll wheel movement. Positive delta scrolls up.
type ScrollEvent struct {
	Delta float32
}

// GamepadButtonEvent is a gamepad button state change.
type GamepadButtonEvent struct {
	// Gamepad is the joystick slot index.
	Gamepad int

	// Button is the standard gamepad button index.
	Button int

	// State is Pressed or Released.
	State KeyState
}

// GamepadAxisEvent reports a gamepad axis value that moved past the poller's
// deadzone since the last poll.
type GamepadAxisEvent struct {
	// Gamepad is the joystick slot index.
	Gamepad int

	// Axis is the standard gamepad axis index.
	Axis int

	// Value is the axis position in [-1, 1], zeroed inside the deadzone.
	Value float32
}

// GamepadConnectionEvent reports a gamepad appearing or disappearing.
type GamepadConnectionEvent struct {
	// Gamepad is the joystick slot index.
	Gamepad int

	// Connected is true when the gamepad was plugged in, false when removed.
	Connected bool
}

func (KeyEvent) isEvent()               {}
func (MouseButtonEvent) isEvent()       {}
func (MouseMoveEvent) isEvent()         {}
func (ScrollEvent) isEvent()            {}
func (GamepadButtonEvent) isEvent()     {}
func (GamepadAxisEvent) isEvent()       {}
func (GamepadConnectionEvent) isEvent() {}
