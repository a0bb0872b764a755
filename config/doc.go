// Package config loads the badusb application configuration.
//
// Configuration is layered: built-in defaults, then an optional TOML file,
// then BADUSB_* environment variables. Command-line flags are applied on
// top by the caller.
//
// Example file:
//
//	base_dir = "/srv/badusb"
//
//	[gadget]
//	root = "/sys/kernel/config/usb_gadget"
//	lock_file = "/run/badusb/usb.lock"
//	hid_device = "/dev/hidg0"
//
//	[ui]
//	tick_ms = 500
//
//	[log]
//	level = "info"
//	json = false
package config
