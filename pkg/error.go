package pkg

import "errors"

// Settings errors.
var (
	// ErrSettingsHeader indicates the settings file type tag or version
	// does not match the expected header.
	ErrSettingsHeader = errors.New("settings header mismatch")

	// ErrSettingsField indicates a required settings field is missing or
	// holds an out-of-range value.
	ErrSettingsField = errors.New("settings field invalid")

	// ErrLayoutSize indicates a keyboard layout resource does not have the
	// fixed table size.
	ErrLayoutSize = errors.New("keyboard layout size invalid")
)

// USB configuration errors.
var (
	// ErrUSBLocked indicates the USB subsystem is bound to an exclusive
	// external session.
	ErrUSBLocked = errors.New("usb configuration locked")

	// ErrUSBConfig indicates the USB device configuration could not be
	// changed or restored. The USB state is inconsistent after this error.
	ErrUSBConfig = errors.New("usb configuration change failed")

	// ErrNoGadget indicates no USB gadget matched the request.
	ErrNoGadget = errors.New("usb gadget not found")
)

// Script errors.
var (
	// ErrScriptClosed indicates an operation on a script handle that has
	// already been closed.
	ErrScriptClosed = errors.New("script closed")

	// ErrScriptSyntax indicates a script line could not be parsed.
	ErrScriptSyntax = errors.New("script syntax error")

	// ErrNoScripts indicates the script folder contains no runnable files.
	ErrNoScripts = errors.New("no script files")
)

// General errors.
var (
	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrAlreadyRunning indicates the dispatcher is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrClosed indicates the application context has been torn down.
	ErrClosed = errors.New("closed")
)
