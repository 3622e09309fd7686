package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_LEFT   KeyCode = 0x25
	KEY_UP     KeyCode = 0x26
	KEY_RIGHT  KeyCode = 0x27
	KEY_DOWN   KeyCode = 0x28
	KEY_A      KeyCode = 0x41
	KEY_D      KeyCode = 0x44
	KEY_E      KeyCode = 0x45
	KEY_F      KeyCode = 0x46
	KEY_Q      KeyCode = 0x51
	KEY_R      KeyCode = 0x52
	KEY_S      KeyCode = 0x53
	KEY_W      KeyCode = 0x57
	KEY_F1     KeyCode = 0x70
)

// Mouse state structure
type MouseState struct {
	X       uint16
	Y       uint16
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

/**
 * @brief Input tracks keyboard and mouse state and turns changes into events
 * on the bus it was created with.
 */
type Input struct {
	mu               sync.Mutex
	bus              *EventBus
	keyboardCurrent  KeyboardState
	keyboardPrevious KeyboardState
	mouseCurrent     MouseState
	mousePrevious    MouseState
}

func NewInput(bus *EventBus) *Input {
	return &Input{bus: bus}
}

// Update copies the current state into the previous state. Call once per frame.
func (in *Input) Update() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keyboardPrevious = in.keyboardCurrent
	in.mousePrevious = in.mouseCurrent
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keyboardCurrent.Keys[uint8(key)]
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keyboardPrevious.Keys[uint8(key)]
}

func (in *Input) IsButtonDown(button Button) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mouseCurrent.Buttons[button]
}

func (in *Input) MousePosition() (int32, int32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return int32(in.mouseCurrent.X), int32(in.mouseCurrent.Y)
}

// ProcessKey records a key transition and fires the matching event.
func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	in.mu.Lock()
	if in.keyboardCurrent.Keys[uint8(key)] == pressed {
		in.mu.Unlock()
		return
	}
	in.keyboardCurrent.Keys[uint8(key)] = pressed
	in.mu.Unlock()

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	in.bus.Fire(EventContext{Type: code, Data: &KeyEvent{KeyCode: key}})
}

// ProcessButton records a button transition and fires the matching event.
func (in *Input) ProcessButton(button Button, pressed bool) {
	in.mu.Lock()
	if in.mouseCurrent.Buttons[button] == pressed {
		in.mu.Unlock()
		return
	}
	in.mouseCurrent.Buttons[button] = pressed
	x, y := in.mouseCurrent.X, in.mouseCurrent.Y
	in.mu.Unlock()

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	in.bus.Fire(EventContext{Type: code, Data: &MouseEvent{Button: button, PosX: x, PosY: y}})
}

// ProcessMouseMove records a pointer move and fires EVENT_CODE_MOUSE_MOVED.
func (in *Input) ProcessMouseMove(x, y uint16) {
	in.mu.Lock()
	if in.mouseCurrent.X == x && in.mouseCurrent.Y == y {
		in.mu.Unlock()
		return
	}
	in.mouseCurrent.X = x
	in.mouseCurrent.Y = y
	in.mu.Unlock()

	in.bus.Fire(EventContext{Type: EVENT_CODE_MOUSE_MOVED, Data: &MouseEvent{PosX: x, PosY: y}})
}
