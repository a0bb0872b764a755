package script

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/settings"
)

// LayoutExt is the file extension of keyboard layout tables.
const LayoutExt = ".kl"

// Layout maps ASCII characters to HID keycodes with modifier bits in the
// high byte. Layout files store 128 little-endian 16-bit entries.
type Layout [settings.LayoutSize / 2]uint16

// LoadLayout reads a keyboard layout table. The file must be exactly
// [settings.LayoutSize] bytes.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) != settings.LayoutSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", pkg.ErrLayoutSize, path, len(data))
	}

	var l Layout
	for i := range l {
		l[i] = binary.LittleEndian.Uint16(data[i*2:])
	}
	return &l, nil
}

// Keycode returns the keycode for ch, or zero if ch is outside the table.
func (l *Layout) Keycode(ch byte) uint16 {
	if int(ch) >= len(l) {
		return 0
	}
	return l[ch]
}

// ListLayouts returns the valid layout files in dir, sorted by name.
func ListLayouts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), LayoutExt) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if settings.ValidLayout(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LayoutName returns the display name of a layout path ("en-US" for
// ".../en-US.kl").
func LayoutName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), LayoutExt)
}
