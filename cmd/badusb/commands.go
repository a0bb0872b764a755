package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ardnew/badusb/config"
	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/script"
	"github.com/ardnew/badusb/settings"
	"github.com/ardnew/badusb/usb/gadget"
	"github.com/ardnew/badusb/usb/usbid"
)

func settingsStore(cfg config.Config) *settings.Store {
	return settings.NewStore(cfg.SettingsPath(), cfg.DefaultLayoutPath())
}

// --- settings ---

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the saved keyboard layout and interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store := settingsStore(cfg)
			rec := store.Load()

			w := cmd.OutOrStdout()
			printStatus(w, "file", "%s", store.Path())
			printStatus(w, "layout", "%s (%s)", script.LayoutName(rec.Layout), rec.Layout)
			printStatus(w, "interface", "%s", rec.Interface)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change the saved settings",
		Long: `Change the saved settings.

The layout is a file path or the name of a file in the layout folder.

Examples:
  badusb settings set --layout de-DE
  badusb settings set --interface ble`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, _ := cmd.Flags().GetString("layout")
			iface, _ := cmd.Flags().GetString("interface")
			if layout == "" && iface == "" {
				return fmt.Errorf("one of --layout or --interface is required")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store := settingsStore(cfg)
			rec := store.Load()

			if layout != "" {
				path := resolveLayout(cfg, layout)
				if !settings.ValidLayout(path) {
					return fmt.Errorf("%w: %s", pkg.ErrLayoutSize, path)
				}
				rec.Layout = path
			}
			if iface != "" {
				if rec.Interface, err = settings.ParseInterface(iface); err != nil {
					return err
				}
			}

			if err := store.Save(rec); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Saved layout %s, interface %s",
				script.LayoutName(rec.Layout), rec.Interface)
			return nil
		},
	}
	set.Flags().String("layout", "", "keyboard layout name or path")
	set.Flags().String("interface", "", "HID interface (usb, ble)")

	cmd.AddCommand(show, set)
	return cmd
}

// resolveLayout maps a bare layout name to a file in the layout folder.
func resolveLayout(cfg config.Config, layout string) string {
	if strings.ContainsRune(layout, filepath.Separator) || strings.ContainsRune(layout, '/') {
		return layout
	}
	if !strings.HasSuffix(layout, script.LayoutExt) {
		layout += script.LayoutExt
	}
	return filepath.Join(cfg.LayoutDir(), layout)
}

// --- layouts ---

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List keyboard layouts in the layout folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			paths, err := script.ListLayouts(cfg.LayoutDir())
			if err != nil {
				return fmt.Errorf("listing layouts: %w", err)
			}
			current := settingsStore(cfg).Load().Layout

			w := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintf(w, "no layouts in %s\n", cfg.LayoutDir())
				return nil
			}
			for _, path := range paths {
				mark := " "
				if path == current {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s\n", mark, script.LayoutName(path))
			}
			return nil
		},
	}
}

// --- gadgets ---

func newGadgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gadgets",
		Short: "List configfs USB gadgets and their bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p := gadget.New(cfg.Gadget.Root, cfg.Gadget.LockFile)
			gadgets, err := p.Gadgets()
			if err != nil {
				return fmt.Errorf("listing gadgets: %w", err)
			}

			idsPath, _ := cmd.Flags().GetString("usb-ids")
			paths := usbid.DefaultPaths
			if idsPath != "" {
				paths = []string{idsPath}
			}
			names, err := usbid.Open(paths...)
			if err != nil {
				pkg.LogDebug(pkg.ComponentCLI, "USB names unavailable", "error", err)
			}

			w := cmd.OutOrStdout()
			printStatus(w, "root", "%s", p.Root())
			printStatus(w, "locked", "%t", p.IsLocked())
			for _, g := range gadgets {
				udc := g.UDC
				if !g.Bound() {
					udc = "-"
				}
				fmt.Fprintf(w, "%-16s %04x:%04x  %-12s %s\n", g.Name, g.VendorID, g.ProductID, udc,
					names.Describe(g.VendorID, g.ProductID))
			}
			return nil
		},
	}
	cmd.Flags().String("usb-ids", "", "usb.ids database used to name devices")
	return cmd
}

// --- config ---

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
}
