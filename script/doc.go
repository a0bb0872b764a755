// Package script defines the BadUSB script engine collaborator.
//
// An [Engine] opens a keystroke-injection script for a given keyboard
// layout and HID interface, returning a [Script] handle. Scripts execute
// incrementally: the owner calls [Script.Tick] from its periodic tick
// callback, so no call blocks the dispatch goroutine.
//
// [NewEngine] returns a line-stepping engine. It parses the script, honors
// REM, DELAY, DEFAULT_DELAY, REPEAT, STRING, STRINGLN and key combinations
// such as "GUI r" or "CTRL ALT DELETE", and advances one command per tick
// (or per elapsed delay). Characters are resolved through the keyboard
// layout table. [NewReportEngine] also writes each keystroke as a boot
// keyboard [Report] press and release pair, for example to /dev/hidg0.
package script
