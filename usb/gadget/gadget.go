package gadget

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/usb"
)

// Binding is a [usb.Config] naming a gadget bound to a device controller.
type Binding struct {
	Gadget    string // Directory name under the configfs root
	UDC       string // USB device controller name
	VendorID  uint16 // idVendor, zero if unreadable
	ProductID uint16 // idProduct, zero if unreadable
}

// String returns "gadget@udc (vvvv:pppp)".
func (b Binding) String() string {
	return fmt.Sprintf("%s@%s (%04x:%04x)", b.Gadget, b.UDC, b.VendorID, b.ProductID)
}

// Snapshot is a [usb.Config] holding every bound gadget in name order.
// Activating a snapshot binds exactly its gadgets.
type Snapshot []Binding

// String joins the bindings with ", ".
func (s Snapshot) String() string {
	names := make([]string, len(s))
	for i, b := range s {
		names[i] = b.String()
	}
	return strings.Join(names, ", ")
}

// Gadget describes a gadget directory.
type Gadget struct {
	Name      string
	UDC       string // Empty when unbound
	VendorID  uint16
	ProductID uint16
}

// Bound reports whether the gadget is attached to a controller.
func (g Gadget) Bound() bool {
	return g.UDC != ""
}

// Platform is a configfs-backed [usb.Platform].
type Platform struct {
	root     string
	lockFile string
	udcDir   string

	write func(path, value string) error
}

var _ usb.Platform = (*Platform)(nil)

// New returns a platform for the gadget tree at root, locked while lockFile
// exists. Empty arguments select [DefaultRoot] and [DefaultLockFile].
func New(root, lockFile string) *Platform {
	if root == "" {
		root = DefaultRoot
	}
	if lockFile == "" {
		lockFile = DefaultLockFile
	}
	return &Platform{
		root:     root,
		lockFile: lockFile,
		udcDir:   DefaultControllerDir,
		write:    writeAttr,
	}
}

// Root returns the configfs gadget root.
func (p *Platform) Root() string {
	return p.root
}

// IsLocked reports whether the lock file exists.
func (p *Platform) IsLocked() bool {
	_, err := os.Stat(p.lockFile)
	return err == nil
}

// Config returns a [Snapshot] of every bound gadget, or nil if none is bound
// or the tree cannot be read.
func (p *Platform) Config() usb.Config {
	gadgets, err := p.Gadgets()
	if err != nil {
		pkg.LogWarn(pkg.ComponentGadget, "cannot scan gadgets", "root", p.root, "error", err)
		return nil
	}
	var snap Snapshot
	for _, g := range gadgets {
		if g.Bound() {
			snap = append(snap, Binding{Gadget: g.Name, UDC: g.UDC, VendorID: g.VendorID, ProductID: g.ProductID})
		}
	}
	if len(snap) == 0 {
		return nil
	}
	return snap
}

// SetConfig activates cfg, which must be a [Binding], a [Snapshot] or nil.
//
// A nil cfg unbinds every bound gadget; if one cannot be unbound, the gadgets
// already unbound are bound again before the error is returned. A Binding
// binds one gadget, first unbinding any other gadget holding the same
// controller. A Snapshot unbinds gadgets it does not list and binds those it
// does.
func (p *Platform) SetConfig(cfg usb.Config) error {
	switch c := cfg.(type) {
	case nil:
		return p.unbindAll()
	case Binding:
		return p.bind(c)
	case Snapshot:
		return p.restore(c)
	default:
		return fmt.Errorf("%w: config %T is not a gadget binding", pkg.ErrInvalidParameter, cfg)
	}
}

func (p *Platform) bind(b Binding) error {
	if b.UDC == "" {
		return fmt.Errorf("%w: binding %s has no controller", pkg.ErrInvalidParameter, b.Gadget)
	}

	dir := filepath.Join(p.root, b.Gadget)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrNoGadget, b.Gadget)
	}

	gadgets, err := p.Gadgets()
	if err != nil {
		return err
	}
	for _, g := range gadgets {
		if g.Name == b.Gadget {
			if g.UDC == b.UDC {
				return nil
			}
			continue
		}
		if g.UDC == b.UDC {
			if err := p.unbind(g.Name); err != nil {
				return err
			}
		}
	}

	if err := p.write(filepath.Join(dir, AttrUDC), b.UDC); err != nil {
		return fmt.Errorf("bind %s to %s: %w", b.Gadget, b.UDC, err)
	}
	pkg.LogDebug(pkg.ComponentGadget, "gadget bound", "gadget", b.Gadget, "udc", b.UDC)
	return nil
}

// restore makes the bound set equal snap. Every step is attempted; the
// errors are joined.
func (p *Platform) restore(snap Snapshot) error {
	want := make(map[string]string, len(snap))
	for _, b := range snap {
		want[b.Gadget] = b.UDC
	}

	gadgets, err := p.Gadgets()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	var errs []error
	for _, g := range gadgets {
		if g.Bound() && want[g.Name] != g.UDC {
			if err := p.unbind(g.Name); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, b := range snap {
		if err := p.bind(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Gadgets lists the gadget directories under the root in name order.
func (p *Platform) Gadgets() ([]Gadget, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, err
	}

	var gadgets []Gadget
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		g, err := parseGadget(filepath.Join(p.root, entry.Name()))
		if err != nil {
			continue // Not a gadget directory
		}
		gadgets = append(gadgets, g)
	}

	sort.Slice(gadgets, func(i, j int) bool { return gadgets[i].Name < gadgets[j].Name })
	return gadgets, nil
}

// unbindAll unbinds every bound gadget. On failure the gadgets it already
// unbound are bound again and the first error is returned.
func (p *Platform) unbindAll() error {
	gadgets, err := p.Gadgets()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // No gadget tree, nothing bound
		}
		return err
	}

	var done []Gadget
	for _, g := range gadgets {
		if !g.Bound() {
			continue
		}
		if err := p.unbind(g.Name); err != nil {
			p.rollback(done)
			return err
		}
		done = append(done, g)
	}
	return nil
}

// rollback binds gadgets back to the controllers they held.
func (p *Platform) rollback(gadgets []Gadget) {
	for i := len(gadgets) - 1; i >= 0; i-- {
		g := gadgets[i]
		path := filepath.Join(p.root, g.Name, AttrUDC)
		if err := p.write(path, g.UDC); err != nil {
			pkg.LogError(pkg.ComponentGadget, "rollback failed",
				"gadget", g.Name, "udc", g.UDC, "error", err)
			continue
		}
		pkg.LogDebug(pkg.ComponentGadget, "gadget rebound", "gadget", g.Name, "udc", g.UDC)
	}
}

func (p *Platform) unbind(name string) error {
	if err := p.write(filepath.Join(p.root, name, AttrUDC), ""); err != nil {
		return fmt.Errorf("unbind %s: %w", name, err)
	}
	pkg.LogDebug(pkg.ComponentGadget, "gadget unbound", "gadget", name)
	return nil
}

// Controllers lists the USB device controllers in name order.
func (p *Platform) Controllers() ([]string, error) {
	entries, err := os.ReadDir(p.udcDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// HIDBinding returns a binding of the named gadget to udc. An empty udc
// selects the first controller from [Platform.Controllers].
func (p *Platform) HIDBinding(name, udc string) (Binding, error) {
	dir := filepath.Join(p.root, name)
	g, err := parseGadget(dir)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %s", pkg.ErrNoGadget, name)
	}
	if udc == "" {
		udcs, err := p.Controllers()
		if err != nil || len(udcs) == 0 {
			return Binding{}, fmt.Errorf("%w: no device controller for %s", pkg.ErrNoGadget, name)
		}
		udc = udcs[0]
	}
	return Binding{Gadget: g.Name, UDC: udc, VendorID: g.VendorID, ProductID: g.ProductID}, nil
}
