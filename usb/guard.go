package usb

import (
	"fmt"

	"github.com/ardnew/badusb/pkg"
)

// Guard holds the USB device configuration for the lifetime of an
// application context.
type Guard struct {
	platform Platform

	// prev is borrowed from the platform; it is restored, never freed.
	prev     Config
	captured bool
	locked   bool
}

// Acquire snapshots the active configuration and forces it to none.
//
// If the platform is locked, Acquire changes nothing and returns a guard
// whose [Guard.Locked] method reports true. A failure to force the
// configuration wraps [pkg.ErrUSBConfig]; the caller must treat it as fatal
// because the USB state is then unknown.
func Acquire(p Platform) (*Guard, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil platform", pkg.ErrInvalidParameter)
	}

	g := &Guard{platform: p}

	if p.IsLocked() {
		g.locked = true
		pkg.LogWarn(pkg.ComponentUSB, "usb locked by external session, configuration left unchanged")
		return g, nil
	}

	g.prev = p.Config()
	if err := p.SetConfig(nil); err != nil {
		return nil, fmt.Errorf("%w: clear configuration (previous %s): %v",
			pkg.ErrUSBConfig, configName(g.prev), err)
	}
	g.captured = true

	pkg.LogInfo(pkg.ComponentUSB, "usb configuration captured", "previous", configName(g.prev))
	return g, nil
}

// Locked reports whether the platform was locked at acquisition.
func (g *Guard) Locked() bool {
	return g.locked
}

// Captured reports whether a configuration snapshot is held and will be
// restored by [Guard.Release].
func (g *Guard) Captured() bool {
	return g.captured
}

// Previous returns the configuration active before acquisition. It is nil
// when the guard is locked or when no configuration was active.
func (g *Guard) Previous() Config {
	return g.prev
}

// Release restores the captured configuration. It does nothing if no
// snapshot is held, and is safe to call more than once. A failure wraps
// [pkg.ErrUSBConfig] and must be treated as fatal.
func (g *Guard) Release() error {
	if !g.captured {
		return nil
	}
	g.captured = false

	if err := g.platform.SetConfig(g.prev); err != nil {
		return fmt.Errorf("%w: restore %s: %v", pkg.ErrUSBConfig, configName(g.prev), err)
	}

	pkg.LogInfo(pkg.ComponentUSB, "usb configuration restored", "config", configName(g.prev))
	return nil
}
