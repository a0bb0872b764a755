package app

import (
	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/scene"
)

// Custom events sent by views to the current scene.
const (
	EventFileSelected uint32 = iota + 1
	EventToggle
	EventConfig
	EventErrorBack
)

// ErrorReason is why the Error scene was entered.
type ErrorReason uint8

// Error reasons.
const (
	ErrorNone ErrorReason = iota
	ErrorNoFiles
	ErrorCloseRPC
)

// String returns the message shown by the Error scene.
func (r ErrorReason) String() string {
	switch r {
	case ErrorNone:
		return "No error"
	case ErrorNoFiles:
		return "No scripts found.\nThis app will not\nwork without\nrequired files."
	case ErrorCloseRPC:
		return "USB is locked.\nClose remote session first."
	default:
		return "Unknown error"
	}
}

// Err returns the sentinel error for r, or nil for [ErrorNone].
func (r ErrorReason) Err() error {
	switch r {
	case ErrorNoFiles:
		return pkg.ErrNoScripts
	case ErrorCloseRPC:
		return pkg.ErrUSBLocked
	default:
		return nil
	}
}

func (a *App) handle(id scene.ID, ev scene.Event) bool {
	switch id {
	case scene.FileSelect:
		return a.fileSelectScene(ev)
	case scene.Config:
		return a.configScene(ev)
	case scene.Work:
		return a.workScene(ev)
	case scene.Error:
		return a.errorScene(ev)
	default:
		return false
	}
}
