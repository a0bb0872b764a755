package scene

import "fmt"

// ID identifies a scene.
type ID uint8

// Scene identifiers.
const (
	FileSelect ID = iota
	Config
	Work
	Error
)

// String returns the scene name.
func (id ID) String() string {
	switch id {
	case FileSelect:
		return "FileSelect"
	case Config:
		return "Config"
	case Work:
		return "Work"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Scene(%d)", uint8(id))
	}
}

// EventKind classifies a scene event.
type EventKind uint8

// Event kinds.
const (
	EventEnter  EventKind = iota // Scene became active
	EventExit                    // Scene is being left
	EventCustom                  // Application-defined event
	EventBack                    // Navigation back
	EventTick                    // Periodic tick
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventEnter:
		return "enter"
	case EventExit:
		return "exit"
	case EventCustom:
		return "custom"
	case EventBack:
		return "back"
	case EventTick:
		return "tick"
	default:
		return "unknown"
	}
}

// Event is delivered to a [Handler].
type Event struct {
	Kind   EventKind
	Custom uint32 // Application event code for EventCustom
}

// Handler handles ev for the scene id and reports whether it was consumed.
// The return value is ignored for enter and exit events.
type Handler func(id ID, ev Event) bool
