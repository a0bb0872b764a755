// Package usb fences the process-wide USB device configuration.
//
// The USB device configuration is global state shared by every feature of
// the system. A [Guard] snapshots the active configuration when it is
// acquired, forces the configuration to "none" so that a HID personality can
// be installed without conflict, and restores the snapshot when released:
//
//	guard, err := usb.Acquire(platform)
//	if err != nil {
//	    panic(err) // USB state is inconsistent
//	}
//	if guard.Locked() {
//	    // an exclusive external session owns USB; nothing was changed
//	}
//	defer func() {
//	    if err := guard.Release(); err != nil {
//	        panic(err)
//	    }
//	}()
//
// Platform access goes through the [Platform] interface. The
// [github.com/ardnew/badusb/usb/gadget] package implements it on top of the
// Linux USB gadget configfs tree.
package usb
