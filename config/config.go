package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/settings"
	"github.com/ardnew/badusb/usb/gadget"
)

// Fixed locations relative to the base folder.
const (
	LayoutFolder  = "assets/layouts"
	DefaultLayout = "en-US.kl"
	LogFile       = "badusb.log"
)

// Config is the application configuration.
type Config struct {
	BaseDir string       `toml:"base_dir"`
	Gadget  GadgetConfig `toml:"gadget"`
	UI      UIConfig     `toml:"ui"`
	Log     LogConfig    `toml:"log"`
}

// GadgetConfig selects the configfs tree and lock file. HIDDevice, if set,
// receives keyboard reports, for example /dev/hidg0. HIDGadget names the
// gadget owning that device; it is bound to UDC while a script is open. An
// empty UDC selects the first device controller.
type GadgetConfig struct {
	Root      string `toml:"root"`
	LockFile  string `toml:"lock_file"`
	HIDDevice string `toml:"hid_device"`
	HIDGadget string `toml:"hid_gadget"`
	UDC       string `toml:"udc"`
}

// UIConfig tunes the event loop.
type UIConfig struct {
	TickMS int `toml:"tick_ms"`
}

// LogConfig controls the log file written under the base folder.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseDir: defaultBaseDir(),
		Gadget: GadgetConfig{
			Root:     gadget.DefaultRoot,
			LockFile: gadget.DefaultLockFile,
		},
		UI: UIConfig{
			TickMS: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultBaseDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "badusb-data"
		}
	}
	return filepath.Join(dir, "badusb")
}

// FilePath returns the default configuration file path.
func FilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "badusb", "config.toml")
}

// Load returns the defaults overlaid with the TOML file at path and the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			pkg.LogDebug(pkg.ComponentCLI, "no config file", "path", path)
		case err != nil:
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				pkg.LogWarn(pkg.ComponentCLI, "unknown config keys ignored",
					"path", path, "keys", fmt.Sprint(undecoded))
			}
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment variable names.
const (
	EnvBaseDir   = "BADUSB_BASE_DIR"
	EnvRoot      = "BADUSB_GADGET_ROOT"
	EnvLockFile  = "BADUSB_LOCK_FILE"
	EnvHID       = "BADUSB_HID_DEVICE"
	EnvHIDGadget = "BADUSB_HID_GADGET"
	EnvUDC       = "BADUSB_UDC"
	EnvTickMS    = "BADUSB_TICK_MS"
	EnvLogLevel  = "BADUSB_LOG_LEVEL"
	EnvLogJSON   = "BADUSB_LOG_JSON"
)

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBaseDir); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv(EnvRoot); v != "" {
		cfg.Gadget.Root = v
	}
	if v := os.Getenv(EnvLockFile); v != "" {
		cfg.Gadget.LockFile = v
	}
	if v := os.Getenv(EnvHID); v != "" {
		cfg.Gadget.HIDDevice = v
	}
	if v := os.Getenv(EnvHIDGadget); v != "" {
		cfg.Gadget.HIDGadget = v
	}
	if v := os.Getenv(EnvUDC); v != "" {
		cfg.Gadget.UDC = v
	}
	if v := os.Getenv(EnvTickMS); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.UI.TickMS = ms
		} else {
			pkg.LogWarn(pkg.ComponentCLI, "could not parse integer from env var",
				"env", EnvTickMS, "value", v, "error", err)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.JSON = b
		} else {
			pkg.LogWarn(pkg.ComponentCLI, "could not parse bool from env var",
				"env", EnvLogJSON, "value", v, "error", err)
		}
	}
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("%w: base_dir is empty", pkg.ErrInvalidParameter)
	}
	if c.UI.TickMS <= 0 {
		return fmt.Errorf("%w: tick_ms %d must be positive", pkg.ErrInvalidParameter, c.UI.TickMS)
	}
	if c.Gadget.HIDGadget != "" && c.Gadget.HIDDevice == "" {
		return fmt.Errorf("%w: hid_gadget %s requires hid_device", pkg.ErrInvalidParameter, c.Gadget.HIDGadget)
	}
	if _, err := pkg.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// TickPeriod returns the event loop tick period.
func (c Config) TickPeriod() time.Duration {
	return time.Duration(c.UI.TickMS) * time.Millisecond
}

// SettingsPath returns the settings file path under the base folder.
func (c Config) SettingsPath() string {
	return filepath.Join(c.BaseDir, settings.FileName)
}

// LayoutDir returns the keyboard layout folder.
func (c Config) LayoutDir() string {
	return filepath.Join(c.BaseDir, filepath.FromSlash(LayoutFolder))
}

// DefaultLayoutPath returns the built-in layout file path.
func (c Config) DefaultLayoutPath() string {
	return filepath.Join(c.LayoutDir(), DefaultLayout)
}

// LogPath returns the log file path.
func (c Config) LogPath() string {
	return filepath.Join(c.BaseDir, LogFile)
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
