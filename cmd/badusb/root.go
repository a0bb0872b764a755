package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ardnew/badusb/app"
	"github.com/ardnew/badusb/config"
	"github.com/ardnew/badusb/gui"
	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/script"
	"github.com/ardnew/badusb/usb"
	"github.com/ardnew/badusb/usb/gadget"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "badusb [script]",
		Short: "Run keystroke-injection scripts over a USB gadget",
		Long: `Run keystroke-injection scripts over a USB gadget.

Without a script argument a file browser lists the scripts in the base
folder. The USB gadget configuration is switched off while badusb runs and
restored on exit.

Examples:
  badusb
  badusb ~/.local/share/badusb/hello.txt
  badusb --base-dir /srv/badusb --log-level debug`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			var scriptPath string
			if len(args) == 1 {
				if scriptPath, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}
			return runApp(cmd.Context(), cfg, scriptPath)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", config.FilePath(), "configuration file")
	flags.String("base-dir", "", "folder holding scripts and settings")
	flags.String("gadget-root", "", "configfs usb_gadget folder")
	flags.String("lock-file", "", "file whose presence locks the USB configuration")
	flags.String("hid-device", "", "HID gadget device receiving keyboard reports")
	flags.String("hid-gadget", "", "gadget owning the HID device, bound while a script is open")
	flags.String("udc", "", "device controller for the HID gadget (default first controller)")
	flags.Int("tick", 0, "event loop tick period in milliseconds")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "write JSON logs")

	root.AddCommand(newSettingsCmd())
	root.AddCommand(newLayoutsCmd())
	root.AddCommand(newGadgetsCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// loadConfig reads the configuration file and applies flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("base-dir") {
		cfg.BaseDir, _ = flags.GetString("base-dir")
	}
	if flags.Changed("gadget-root") {
		cfg.Gadget.Root, _ = flags.GetString("gadget-root")
	}
	if flags.Changed("lock-file") {
		cfg.Gadget.LockFile, _ = flags.GetString("lock-file")
	}
	if flags.Changed("hid-device") {
		cfg.Gadget.HIDDevice, _ = flags.GetString("hid-device")
	}
	if flags.Changed("hid-gadget") {
		cfg.Gadget.HIDGadget, _ = flags.GetString("hid-gadget")
	}
	if flags.Changed("udc") {
		cfg.Gadget.UDC, _ = flags.GetString("udc")
	}
	if flags.Changed("tick") {
		cfg.UI.TickMS, _ = flags.GetInt("tick")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON, _ = flags.GetBool("log-json")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	level, _ := pkg.ParseLogLevel(cfg.Log.Level)
	pkg.SetLogLevel(level)
	pkg.SetLogFormat(logFormat(cfg))
	return cfg, nil
}

func logFormat(cfg config.Config) pkg.LogFormat {
	if cfg.Log.JSON {
		return pkg.LogFormatJSON
	}
	return pkg.LogFormatText
}

// setupLogging directs logs to the log file under the base folder, since
// the terminal belongs to the UI while the app runs.
func setupLogging(cfg config.Config) (io.Closer, error) {
	level, err := pkg.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating base dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	pkg.SetLogOutput(f, logFormat(cfg))
	pkg.SetLogLevel(level)
	return f, nil
}

// newEngine returns the script engine for cfg. With a HID device it writes
// keyboard reports there, binding the HID gadget, if configured, while a
// script is open. The returned closer releases the device.
func newEngine(cfg config.Config, platform *gadget.Platform) (script.Engine, io.Closer, error) {
	if cfg.Gadget.HIDDevice == "" {
		return script.NewEngine(), io.NopCloser(nil), nil
	}

	var hid usb.Config
	if cfg.Gadget.HIDGadget != "" {
		b, err := platform.HIDBinding(cfg.Gadget.HIDGadget, cfg.Gadget.UDC)
		if err != nil {
			return nil, nil, err
		}
		hid = b
	}

	dev, err := os.OpenFile(cfg.Gadget.HIDDevice, os.O_WRONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("opening HID device: %w", err)
	}
	if hid == nil {
		return script.NewReportEngine(dev, nil, nil), dev, nil
	}
	return script.NewReportEngine(dev, platform, hid), dev, nil
}

func runApp(ctx context.Context, cfg config.Config, scriptPath string) error {
	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	platform := gadget.New(cfg.Gadget.Root, cfg.Gadget.LockFile)
	engine, hid, err := newEngine(cfg, platform)
	if err != nil {
		return err
	}
	defer hid.Close()

	a, err := app.New(app.Options{
		BaseDir:       cfg.BaseDir,
		LayoutDir:     cfg.LayoutDir(),
		DefaultLayout: config.DefaultLayout,
		ScriptPath:    scriptPath,
		Platform:      platform,
		Engine:        engine,
		Display:       gui.NewScreen(nil),
		TickPeriod:    cfg.TickPeriod(),
	})
	if err != nil {
		return err
	}

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		pkg.LogWarn(pkg.ComponentCLI, "close failed", "error", err)
	}
	if errors.Is(runErr, gui.ErrInterrupted) {
		return nil
	}
	return runErr
}
