package input

// Key codes carried by KeyEvent. The values match GLFW key codes, which use
// ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA uint32 = 65
	KeyB uint32 = 66
	KeyC uint32 = 67
	KeyD uint32 = 68
	KeyE uint32 = 69
	KeyF uint32 = 70
	KeyG uint32 = 71
	KeyL uint32 = 76
	KeyM uint32 = 77
	KeyQ uint32 = 81
	KeyS uint32 = 83
	KeyT uint32 = 84
	KeyV uint32 = 86
	KeyW uint32 = 87
	KeyX uint32 = 88

	Key0 uint32 = 48
	Key1 uint32 = 49
	Key2 uint32 = 50
	Key3 uint32 = 51
	Key4 uint32 = 52
	Key5 uint32 = 53
	Key6 uint32 = 54
	Key7 uint32 = 55
	Key8 uint32 = 56
	Key9 uint32 = 57

	KeySpace     uint32 = 32
	KeyEscape    uint32 = 256
	KeyEnter     uint32 = 257
	KeyTab       uint32 = 258
	KeyBackspace uint32 = 259
	KeyRight     uint32 = 262
	KeyLeft      uint32 = 263
	KeyDown      uint32 = 264
	KeyUp        uint32 = 265
	KeyLeftShift uint32 = 340
	KeyLeftCtrl  uint32 = 341
	KeyLeftAlt   uint32 = 342
)

// Mouse button codes carried by MouseButtonEvent, matching GLFW.
const (
	MouseButtonLeft   uint32 = 0
	MouseButtonRight  uint32 = 1
	MouseButtonMiddle uint32 = 2
)
