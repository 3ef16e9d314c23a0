package input

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrainPreservesOrder(t *testing.T) {
	q := NewQueue()
	q.Push(KeyEvent{KeyCode: 1, State: Pressed})
	q.Push(MouseMoveEvent{X: 10, Y: 20})
	q.Push(KeyEvent{KeyCode: 1, State: Released})

	events := q.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, KeyEvent{KeyCode: 1, State: Pressed}, events[0])
	assert.Equal(t, MouseMoveEvent{X: 10, Y: 20}, events[1])
	assert.Equal(t, KeyEvent{KeyCode: 1, State: Released}, events[2])

	assert.Nil(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(code uint32) {
			defer wg.Done()
			for range 100 {
				q.Push(KeyEvent{KeyCode: code})
			}
		}(uint32(i))
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 800)
}

func TestDiffGamepadStatesConnection(t *testing.T) {
	cur := gamepadState{connected: true}
	events := diffGamepadStates(0, gamepadState{}, cur, DefaultDeadzone)
	require.Len(t, events, 1)
	assert.Equal(t, GamepadConnectionEvent{Gamepad: 0, Connected: true}, events[0])

	events = diffGamepadStates(0, cur, gamepadState{}, DefaultDeadzone)
	require.Len(t, events, 1)
	assert.Equal(t, GamepadConnectionEvent{Gamepad: 0, Connected: false}, events[0])
}

func TestDiffGamepadStatesButtonEdges(t *testing.T) {
	prev := gamepadState{connected: true}
	cur := prev
	cur.buttons[3] = true

	events := diffGamepadStates(1, prev, cur, DefaultDeadzone)
	require.Len(t, events, 1)
	assert.Equal(t, GamepadButtonEvent{Gamepad: 1, Button: 3, State: Pressed}, events[0])

	// Held buttons produce no repeat events.
	assert.Empty(t, diffGamepadStates(1, cur, cur, DefaultDeadzone))

	events = diffGamepadStates(1, cur, prev, DefaultDeadzone)
	require.Len(t, events, 1)
	assert.Equal(t, GamepadButtonEvent{Gamepad: 1, Button: 3, State: Released}, events[0])
}

func TestDiffGamepadStatesAxisDeadzone(t *testing.T) {
	prev := gamepadState{connected: true}

	// Movement inside the deadzone is invisible.
	cur := prev
	cur.axes[0] = 0.05
	assert.Empty(t, diffGamepadStates(0, prev, cur, DefaultDeadzone))

	// Crossing the deadzone emits the raw value.
	cur.axes[0] = 0.5
	events := diffGamepadStates(0, prev, cur, DefaultDeadzone)
	require.Len(t, events, 1)
	assert.Equal(t, GamepadAxisEvent{Gamepad: 0, Axis: 0, Value: 0.5}, events[0])

	// Returning inside the deadzone emits a single zero.
	next := prev
	next.axes[0] = 0.02
	events = diffGamepadStates(0, cur, next, DefaultDeadzone)
	require.Len(t, events, 1)
	assert.Equal(t, GamepadAxisEvent{Gamepad: 0, Axis: 0, Value: 0}, events[0])
}

func TestDiffGamepadStatesDisconnectSuppressesInputs(t *testing.T) {
	prev := gamepadState{connected: true}
	prev.buttons[0] = true
	prev.axes[1] = 0.8

	events := diffGamepadStates(2, prev, gamepadState{}, DefaultDeadzone)
	require.Len(t, events, 1)
	assert.IsType(t, GamepadConnectionEvent{}, events[0])
}
