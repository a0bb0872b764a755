// Package settings persists the BadUSB settings record.
//
// The record holds the keyboard layout path and the HID interface selector.
// It is stored as a small Flipper-style key/value file with a fixed header:
//
//	Filetype: Flipper BadUSB Settings File
//	Version: 1
//	layout: /ext/badusb/assets/layouts/en-US.kl
//	interface: 0
//
// The header and interface are decoded as YAML. The layout line is taken
// verbatim: no quoting, "~" or "#" comment rules apply to the path.
//
// [Store.Load] never fails: any structural problem with the file yields
// [Store.Default], and a layout path that does not name a 256-byte table is
// replaced with the default layout while the interface is kept.
//
// [Store.Save] serializes the whole record before touching the file and then
// atomically replaces it, so a failed save leaves the previous file intact.
package settings
