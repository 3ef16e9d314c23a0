package input

import (
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	gamepadButtonCount = 15
	gamepadAxisCount   = 6

	// DefaultPollInterval is how often gamepad state is sampled.
	DefaultPollInterval = 16 * time.Millisecond

	// DefaultDeadzone is the axis magnitude below which values report as zero.
	DefaultDeadzone float32 = 0.1
)

// gamepadState is one gamepad's sampled state, compared between polls to
// derive events.
type gamepadState struct {
	connected bool
	buttons   [gamepadButtonCount]bool
	axes      [gamepadAxisCount]float32
}

// GamepadPoller samples connected gamepads on a background ticker and pushes
// state-change events into a Queue. Polling runs off the tick goroutine;
// only the queue is shared.
type GamepadPoller struct {
	queue    *Queue
	interval time.Duration
	deadzone float32

	states [glfw.JoystickLast + 1]gamepadState

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// GamepadPollerOption is a functional option for configuring a GamepadPoller.
type GamepadPollerOption func(*GamepadPoller)

// WithPollInterval sets the sampling interval.
//
// Parameters:
//   - interval: time between polls
//
// Returns:
//   - GamepadPollerOption: option function to apply
func WithPollInterval(interval time.Duration) GamepadPollerOption {
	return func(p *GamepadPoller) {
		p.interval = interval
	}
}

// WithDeadzone sets the axis deadzone.
//
// Parameters:
//   - deadzone: axis magnitude treated as zero
//
// Returns:
//   - GamepadPollerOption: option function to apply
func WithDeadzone(deadzone float32) GamepadPollerOption {
	return func(p *GamepadPoller) {
		p.deadzone = deadzone
	}
}

// NewGamepadPoller creates a poller feeding the given queue. Call Start to
// begin polling.
//
// Parameters:
//   - queue: destination for gamepad events
//   - options: functional options to configure the poller
//
// Returns:
//   - *GamepadPoller: the poller
func NewGamepadPoller(queue *Queue, options ...GamepadPollerOption) *GamepadPoller {
	p := &GamepadPoller{
		queue:    queue,
		interval: DefaultPollInterval,
		deadzone: DefaultDeadzone,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Start launches the polling goroutine. GLFW must be initialized before the
// first poll runs.
func (p *GamepadPoller) Start() {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.poll()
			}
		}
	}()
}

// Stop ends polling and waits for the goroutine to exit. Safe to call more
// than once.
func (p *GamepadPoller) Stop() {
	p.once.Do(func() { close(p.stop) })
	<-p.done
}

// poll samples every joystick slot and pushes the derived events.
func (p *GamepadPoller) poll() {
	for slot := glfw.Joystick1; slot <= glfw.JoystickLast; slot++ {
		current := sampleGamepad(slot)
		events := diffGamepadStates(int(slot), p.states[slot], current, p.deadzone)
		p.states[slot] = current
		for _, event := range events {
			p.queue.Push(event)
		}
	}
}

// sampleGamepad reads one joystick slot's current state.
func sampleGamepad(slot glfw.Joystick) gamepadState {
	var state gamepadState
	if !slot.Present() || !slot.IsGamepad() {
		return state
	}
	gp := slot.GetGamepadState()
	if gp == nil {
		return state
	}
	state.connected = true
	for i := range state.buttons {
		state.buttons[i] = gp.Buttons[i] == glfw.Press
	}
	copy(state.axes[:], gp.Axes[:])
	return state
}

// applyDeadzone zeroes axis values inside the deadzone.
func applyDeadzone(value, deadzone float32) float32 {
	if value > -deadzone && value < deadzone {
		return 0
	}
	return value
}

// diffGamepadStates derives the events between two consecutive samples of
// one gamepad slot: connection changes, button edges, and axis movement past
// the deadzone.
//
// Parameters:
//   - slot: joystick slot index
//   - prev, cur: the previous and current samples
//   - deadzone: axis magnitude treated as zero
//
// Returns:
//   - []Event: the derived events, nil if nothing changed
func diffGamepadStates(slot int, prev, cur gamepadState, deadzone float32) []Event {
	var events []Event

	if prev.connected != cur.connected {
		events = append(events, GamepadConnectionEvent{Gamepad: slot, Connected: cur.connected})
	}
	if !cur.connected {
		return events
	}

	for i := range cur.buttons {
		if prev.buttons[i] == cur.buttons[i] {
			continue
		}
		state := Released
		if cur.buttons[i] {
			state = Pressed
		}
		events = append(events, GamepadButtonEvent{Gamepad: slot, Button: i, State: state})
	}

	for i := range cur.axes {
		prevValue := applyDeadzone(prev.axes[i], deadzone)
		curValue := applyDeadzone(cur.axes[i], deadzone)
		if prevValue != curValue {
			events = append(events, GamepadAxisEvent{Gamepad: slot, Axis: i, Value: curValue})
		}
	}

	return events
}
