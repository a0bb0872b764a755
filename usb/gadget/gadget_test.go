package gadget

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/usb"
)

// =============================================================================
// Helpers
// =============================================================================

// makeGadget creates a fake configfs gadget directory.
func makeGadget(t *testing.T, root, name, udc, vendor, product string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	attrs := map[string]string{
		AttrUDC:       udc + "\n",
		AttrIDVendor:  vendor + "\n",
		AttrIDProduct: product + "\n",
	}
	for name, value := range attrs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(value), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readUDC(t *testing.T, root, name string) string {
	t.Helper()
	s, err := readAttrString(filepath.Join(root, name, AttrUDC))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestPlatform(t *testing.T) (*Platform, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "usb_gadget")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	lock := filepath.Join(t.TempDir(), "usb.lock")
	return New(root, lock), root
}

// =============================================================================
// Platform Tests
// =============================================================================

func TestNewDefaults(t *testing.T) {
	p := New("", "")
	if p.Root() != DefaultRoot {
		t.Errorf("Root() = %q, want %q", p.Root(), DefaultRoot)
	}
	if p.lockFile != DefaultLockFile {
		t.Errorf("lockFile = %q, want %q", p.lockFile, DefaultLockFile)
	}
}

func TestIsLocked(t *testing.T) {
	p, _ := newTestPlatform(t)
	if p.IsLocked() {
		t.Fatal("IsLocked() = true without lock file")
	}
	if err := os.WriteFile(p.lockFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !p.IsLocked() {
		t.Error("IsLocked() = false with lock file")
	}
}

func TestGadgets(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "g2", "", "0x1d6b", "0x0104")
	makeGadget(t, root, "g1", "dummy_udc.0", "0x0483", "0x5740")
	if err := os.MkdirAll(filepath.Join(root, "not-a-gadget"), 0o755); err != nil {
		t.Fatal(err)
	}

	gadgets, err := p.Gadgets()
	if err != nil {
		t.Fatal(err)
	}
	want := []Gadget{
		{Name: "g1", UDC: "dummy_udc.0", VendorID: 0x0483, ProductID: 0x5740},
		{Name: "g2", VendorID: 0x1d6b, ProductID: 0x0104},
	}
	if len(gadgets) != len(want) {
		t.Fatalf("Gadgets() = %+v, want %+v", gadgets, want)
	}
	for i := range want {
		if gadgets[i] != want[i] {
			t.Errorf("Gadgets()[%d] = %+v, want %+v", i, gadgets[i], want[i])
		}
	}
}

func TestConfig(t *testing.T) {
	p, root := newTestPlatform(t)
	if cfg := p.Config(); cfg != nil {
		t.Fatalf("Config() = %v with no gadgets, want nil", cfg)
	}

	makeGadget(t, root, "acm", "", "0x1d6b", "0x0104")
	makeGadget(t, root, "storage", "dummy_udc.0", "0x1d6b", "0x0105")

	makeGadget(t, root, "serial", "dummy_udc.1", "0x1d6b", "0x0106")

	snap, ok := p.Config().(Snapshot)
	if !ok {
		t.Fatalf("Config() = %v, want a Snapshot", p.Config())
	}
	want := Snapshot{
		{Gadget: "serial", UDC: "dummy_udc.1", VendorID: 0x1d6b, ProductID: 0x0106},
		{Gadget: "storage", UDC: "dummy_udc.0", VendorID: 0x1d6b, ProductID: 0x0105},
	}
	if !slices.Equal(snap, want) {
		t.Errorf("Config() = %v, want %v", snap, want)
	}
	if got := want[1].String(); got != "storage@dummy_udc.0 (1d6b:0105)" {
		t.Errorf("Binding.String() = %q", got)
	}
	if got := want.String(); got != "serial@dummy_udc.1 (1d6b:0106), storage@dummy_udc.0 (1d6b:0105)" {
		t.Errorf("Snapshot.String() = %q", got)
	}
}

func TestConfigMissingRoot(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "missing"), "")
	if cfg := p.Config(); cfg != nil {
		t.Errorf("Config() = %v, want nil", cfg)
	}
	if err := p.SetConfig(nil); err != nil {
		t.Errorf("SetConfig(nil) on missing root error = %v", err)
	}
}

func TestSetConfigNoneUnbindsAll(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "a", "udc.0", "0x1", "0x2")
	makeGadget(t, root, "b", "udc.1", "0x1", "0x3")
	makeGadget(t, root, "c", "", "0x1", "0x4")

	if err := p.SetConfig(nil); err != nil {
		t.Fatalf("SetConfig(nil) error = %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		if udc := readUDC(t, root, name); udc != "" {
			t.Errorf("gadget %s UDC = %q, want empty", name, udc)
		}
	}
	if cfg := p.Config(); cfg != nil {
		t.Errorf("Config() after unbind = %v, want nil", cfg)
	}
}

func TestSetConfigBinding(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "hid", "", "0x1d6b", "0x0104")
	makeGadget(t, root, "serial", "udc.0", "0x1d6b", "0x0106")

	if err := p.SetConfig(Binding{Gadget: "hid", UDC: "udc.0"}); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	if udc := readUDC(t, root, "hid"); udc != "udc.0" {
		t.Errorf("hid UDC = %q, want udc.0", udc)
	}
	if udc := readUDC(t, root, "serial"); udc != "" {
		t.Errorf("serial UDC = %q, want empty", udc)
	}
}

func TestSetConfigErrors(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "hid", "", "0x1d6b", "0x0104")

	tests := []struct {
		name string
		cfg  usb.Config
		want error
	}{
		{"foreign config", foreignConfig{}, pkg.ErrInvalidParameter},
		{"no controller", Binding{Gadget: "hid"}, pkg.ErrInvalidParameter},
		{"missing gadget", Binding{Gadget: "gone", UDC: "udc.0"}, pkg.ErrNoGadget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.SetConfig(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("SetConfig() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetConfigNoneRollsBack(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "a", "udc.0", "0x1", "0x2")
	makeGadget(t, root, "b", "udc.1", "0x1", "0x3")
	makeGadget(t, root, "c", "udc.2", "0x1", "0x4")

	busy := errors.New("device or resource busy")
	p.write = func(path, value string) error {
		if value == "" && filepath.Base(filepath.Dir(path)) == "c" {
			return busy
		}
		return writeAttr(path, value)
	}

	if err := p.SetConfig(nil); !errors.Is(err, busy) {
		t.Fatalf("SetConfig(nil) error = %v, want %v", err, busy)
	}
	for name, want := range map[string]string{"a": "udc.0", "b": "udc.1", "c": "udc.2"} {
		if udc := readUDC(t, root, name); udc != want {
			t.Errorf("gadget %s UDC = %q after failed unbind, want %q", name, udc, want)
		}
	}
}

func TestSetConfigSnapshot(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "acm", "", "0x1", "0x2")
	makeGadget(t, root, "hid", "udc.0", "0x1", "0x3")
	makeGadget(t, root, "storage", "", "0x1", "0x4")

	snap := Snapshot{
		{Gadget: "acm", UDC: "udc.0"},
		{Gadget: "storage", UDC: "udc.1"},
	}
	if err := p.SetConfig(snap); err != nil {
		t.Fatalf("SetConfig(snapshot) error = %v", err)
	}
	for name, want := range map[string]string{"acm": "udc.0", "hid": "", "storage": "udc.1"} {
		if udc := readUDC(t, root, name); udc != want {
			t.Errorf("gadget %s UDC = %q, want %q", name, udc, want)
		}
	}

	// A missing gadget does not stop the others from being bound.
	if err := p.SetConfig(nil); err != nil {
		t.Fatal(err)
	}
	err := p.SetConfig(Snapshot{{Gadget: "gone", UDC: "udc.2"}, {Gadget: "hid", UDC: "udc.0"}})
	if !errors.Is(err, pkg.ErrNoGadget) {
		t.Errorf("SetConfig() error = %v, want ErrNoGadget", err)
	}
	if udc := readUDC(t, root, "hid"); udc != "udc.0" {
		t.Errorf("hid UDC = %q, want udc.0", udc)
	}
}

func TestControllers(t *testing.T) {
	p, root := newTestPlatform(t)
	p.udcDir = filepath.Join(t.TempDir(), "udc")
	if _, err := p.Controllers(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Controllers() error = %v, want ErrNotExist", err)
	}
	if _, err := p.HIDBinding("hid", ""); !errors.Is(err, pkg.ErrNoGadget) {
		t.Errorf("HIDBinding() for missing gadget error = %v", err)
	}

	makeGadget(t, root, "hid", "", "0x1d6b", "0x0104")
	if _, err := p.HIDBinding("hid", ""); !errors.Is(err, pkg.ErrNoGadget) {
		t.Errorf("HIDBinding() without controllers error = %v", err)
	}

	for _, name := range []string{"udc.1", "udc.0"} {
		if err := os.MkdirAll(filepath.Join(p.udcDir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	udcs, err := p.Controllers()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(udcs, []string{"udc.0", "udc.1"}) {
		t.Errorf("Controllers() = %v", udcs)
	}

	tests := []struct {
		udc  string
		want Binding
	}{
		{"", Binding{Gadget: "hid", UDC: "udc.0", VendorID: 0x1d6b, ProductID: 0x0104}},
		{"udc.1", Binding{Gadget: "hid", UDC: "udc.1", VendorID: 0x1d6b, ProductID: 0x0104}},
	}
	for _, tt := range tests {
		b, err := p.HIDBinding("hid", tt.udc)
		if err != nil {
			t.Fatalf("HIDBinding(%q) error = %v", tt.udc, err)
		}
		if b != tt.want {
			t.Errorf("HIDBinding(%q) = %v, want %v", tt.udc, b, tt.want)
		}
	}
}

type foreignConfig struct{}

func (foreignConfig) String() string { return "foreign" }

// =============================================================================
// Guard Integration
// =============================================================================

func TestGuardRoundTrip(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "composite", "udc.0", "0x0483", "0x5740")
	makeGadget(t, root, "hid", "", "0x1d6b", "0x0104")

	g, err := usb.Acquire(p)
	if err != nil {
		t.Fatal(err)
	}
	if udc := readUDC(t, root, "composite"); udc != "" {
		t.Fatalf("composite still bound to %q after acquire", udc)
	}

	// A script engine installs its own personality.
	if err := p.SetConfig(Binding{Gadget: "hid", UDC: "udc.0"}); err != nil {
		t.Fatal(err)
	}

	if err := g.Release(); err != nil {
		t.Fatal(err)
	}
	if udc := readUDC(t, root, "composite"); udc != "udc.0" {
		t.Errorf("composite UDC = %q after release, want udc.0", udc)
	}
	if udc := readUDC(t, root, "hid"); udc != "" {
		t.Errorf("hid UDC = %q after release, want empty", udc)
	}
}

func TestGuardRoundTripTwoGadgets(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "g1", "udc.0", "0x0483", "0x5740")
	makeGadget(t, root, "g2", "udc.1", "0x1d6b", "0x0104")

	g, err := usb.Acquire(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"g1", "g2"} {
		if udc := readUDC(t, root, name); udc != "" {
			t.Fatalf("%s still bound to %q after acquire", name, udc)
		}
	}

	if err := g.Release(); err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]string{"g1": "udc.0", "g2": "udc.1"} {
		if udc := readUDC(t, root, name); udc != want {
			t.Errorf("%s UDC = %q after release, want %q", name, udc, want)
		}
	}
}

func TestGuardAcquireFailureRestoresTree(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "g1", "udc.0", "0x0483", "0x5740")
	makeGadget(t, root, "g2", "udc.1", "0x1d6b", "0x0104")
	p.write = func(path, value string) error {
		if value == "" && filepath.Base(filepath.Dir(path)) == "g2" {
			return errors.New("device or resource busy")
		}
		return writeAttr(path, value)
	}

	if _, err := usb.Acquire(p); !errors.Is(err, pkg.ErrUSBConfig) {
		t.Fatalf("Acquire() error = %v, want ErrUSBConfig", err)
	}
	for name, want := range map[string]string{"g1": "udc.0", "g2": "udc.1"} {
		if udc := readUDC(t, root, name); udc != want {
			t.Errorf("%s UDC = %q after failed acquire, want %q", name, udc, want)
		}
	}
}

func TestGuardLockedLeavesTree(t *testing.T) {
	p, root := newTestPlatform(t)
	makeGadget(t, root, "rpc", "udc.0", "0x0483", "0x5740")
	if err := os.WriteFile(p.lockFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := usb.Acquire(p)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Locked() {
		t.Fatal("Locked() = false")
	}
	if udc := readUDC(t, root, "rpc"); udc != "udc.0" {
		t.Errorf("rpc UDC = %q, want udc.0", udc)
	}
}
