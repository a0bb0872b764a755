// Package gadget implements [usb.Platform] on top of the Linux USB gadget
// configfs interface.
//
// Each directory under the configfs gadget root (normally
// /sys/kernel/config/usb_gadget/) describes one gadget. A gadget is active
// when its UDC attribute names a USB device controller; writing an empty
// line to UDC unbinds it. The active [usb.Config] is therefore a [Snapshot]
// of every bound gadget, each a [Binding] of a gadget name to a UDC name.
//
// # Locking
//
// External tools that need exclusive control of the USB controller (for
// example a remote management session) create a lock file. While the lock
// file exists, [Platform.IsLocked] reports true and the configuration must
// not be changed.
//
// # Requirements
//
// Writing UDC attributes requires root or an equivalent capability, and the
// libcomposite module must be loaded so that the configfs tree exists.
package gadget
