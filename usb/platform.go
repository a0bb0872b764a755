package usb

// Config is an opaque reference to a USB device configuration. Its lifetime
// is managed by the [Platform]; holders borrow it and never free it. A nil
// Config means no configuration is active.
type Config interface {
	String() string
}

// Platform defines the USB platform operations needed by a [Guard].
//
// Implementations report whether an exclusive external session currently
// owns the USB subsystem, return the active configuration, and switch to a
// given configuration.
type Platform interface {
	// IsLocked returns true if an exclusive external session is bound to
	// the USB subsystem. The configuration must not be changed while locked.
	IsLocked() bool

	// Config returns the active configuration, or nil if none is active.
	Config() Config

	// SetConfig activates cfg. A nil cfg deactivates every configuration.
	SetConfig(cfg Config) error
}

// configName returns a printable name for cfg, which may be nil.
func configName(cfg Config) string {
	if cfg == nil {
		return "none"
	}
	return cfg.String()
}
