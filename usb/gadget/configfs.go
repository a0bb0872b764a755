package gadget

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// =============================================================================
// Gadget Parsing
// =============================================================================

// parseGadget reads a gadget directory. A directory without a UDC attribute
// is not a gadget.
func parseGadget(dir string) (Gadget, error) {
	g := Gadget{Name: filepath.Base(dir)}

	udc, err := readAttrString(filepath.Join(dir, AttrUDC))
	if err != nil {
		return g, err
	}
	g.UDC = udc

	if v, err := readAttrHexUint16(filepath.Join(dir, AttrIDVendor)); err == nil {
		g.VendorID = v
	}
	if v, err := readAttrHexUint16(filepath.Join(dir, AttrIDProduct)); err == nil {
		g.ProductID = v
	}

	return g, nil
}

// =============================================================================
// Attribute Helpers
// =============================================================================

// readAttrString reads a string from a configfs attribute file.
func readAttrString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readAttrHexUint16 reads a hexadecimal uint16 from a configfs attribute file.
func readAttrHexUint16(path string) (uint16, error) {
	s, err := readAttrString(path)
	if err != nil {
		return 0, err
	}
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// writeAttr writes value followed by a newline to an existing attribute file.
func writeAttr(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(value + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
