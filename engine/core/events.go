package core

import "sync"

type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08
	// The configuration file changed on disk. Data: the path as a string
	EVENT_CODE_CONFIG_CHANGED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

/**
 * @brief A synchronous event dispatcher. Listeners run on the goroutine that
 * fires the event, in registration order, until one reports it handled the event.
 */
type EventBus struct {
	mu         sync.RWMutex
	registered map[EventCode][]FnOnEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]FnOnEvent),
	}
}

// Register adds a listener for code.
func (eb *EventBus) Register(code EventCode, onEvent FnOnEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.registered[code] = append(eb.registered[code], onEvent)
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (eb *EventBus) Fire(context EventContext) bool {
	eb.mu.RLock()
	listeners := append([]FnOnEvent(nil), eb.registered[context.Type]...)
	eb.mu.RUnlock()

	for _, l := range listeners {
		if l(context) {
			return true
		}
	}
	return false
}

// Shutdown drops every listener.
func (eb *EventBus) Shutdown() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.registered = make(map[EventCode][]FnOnEvent)
}
