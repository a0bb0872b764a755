package script

import (
	"time"

	"github.com/ardnew/badusb/settings"
)

// State is the execution state of a script.
type State uint8

// Script states.
const (
	StateIdle        State = iota // Loaded, not started
	StateRunning                  // Executing commands on each tick
	StateDelay                    // Waiting for a DELAY to elapse
	StatePaused                   // Paused by the user
	StateDone                     // All commands executed
	StateScriptError              // A command failed to parse
	StateFileError                // The script or layout could not be read
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateDelay:
		return "Delay"
	case StatePaused:
		return "Paused"
	case StateDone:
		return "Done"
	case StateScriptError:
		return "Script error"
	case StateFileError:
		return "File error"
	default:
		return "Unknown"
	}
}

// Active reports whether the script is executing or waiting on a delay.
func (s State) Active() bool {
	return s == StateRunning || s == StateDelay
}

// Status is a snapshot of script progress.
type Status struct {
	State     State
	Line      int    // Lines consumed so far, 0 before start
	Lines     int    // Total line count
	ErrorLine int    // Line of the failing command for StateScriptError
	Error     string // Error text for StateScriptError and StateFileError
}

// Options configures how a script is opened.
type Options struct {
	Layout     string             // Keyboard layout table path
	Interface  settings.Interface // HID transport
	TickPeriod time.Duration      // Tick interval used to convert delays
}

// Engine opens scripts.
type Engine interface {
	// Open loads the script at path. The returned handle must be closed
	// exactly once.
	Open(path string, opts Options) (Script, error)
}

// Script is an open script handle.
type Script interface {
	// Toggle starts an idle or finished script, pauses a running one, and
	// resumes a paused one.
	Toggle()

	// Tick advances execution by one tick period.
	Tick()

	// Status returns the current progress.
	Status() Status

	// SetLayout replaces the keyboard layout table.
	SetLayout(path string) error

	// Close releases the script. Close is synchronous; no execution
	// happens after it returns.
	Close() error
}
