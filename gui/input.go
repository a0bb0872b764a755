package gui

// Key is a navigation key.
type Key uint8

// Navigation keys.
const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyOK
	KeyBack
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyOK:
		return "ok"
	case KeyBack:
		return "back"
	default:
		return "unknown"
	}
}

// InputEvent is a key press delivered to the current view.
type InputEvent struct {
	Key Key
}

// View is a screen that renders itself as text lines and handles input.
type View interface {
	// Render returns the lines to display.
	Render() []string

	// Input handles a key press and reports whether it was consumed.
	Input(ev InputEvent) bool
}

// Notification is a user-facing signal such as a beep or LED blink.
type Notification uint8

// Notifications.
const (
	NotifySuccess Notification = iota
	NotifyError
)

// String returns the notification name.
func (n Notification) String() string {
	switch n {
	case NotifySuccess:
		return "success"
	case NotifyError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(n Notification)
}
