// Package usbid names USB vendors and products using the usb.ids database
// shipped with most Linux distributions.
//
// Vendor lines start with a 4-digit hex ID; product lines under a vendor
// are indented by one tab. Class, language and other sections that follow
// the vendor list are ignored.
package usbid

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// DefaultPaths lists the usual locations of usb.ids.
var DefaultPaths = []string{
	"/usr/share/hwdata/usb.ids",
	"/var/lib/usbutils/usb.ids",
	"/usr/share/misc/usb.ids",
}

// Names maps vendor and product IDs to names. A nil *Names returns empty
// names.
type Names struct {
	vendors  map[uint16]string
	products map[uint32]string
}

// Open parses the first readable file in paths.
func Open(paths ...string) (*Names, error) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()
		n, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return n, nil
	}
	return nil, fmt.Errorf("usb.ids: %w", fs.ErrNotExist)
}

// Parse reads a usb.ids database.
func Parse(r io.Reader) (*Names, error) {
	n := &Names{
		vendors:  make(map[uint16]string),
		products: make(map[uint32]string),
	}

	sc := bufio.NewScanner(r)
	var vendor uint16
	inVendor := false
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}

		if line[0] == '\t' {
			if !inVendor || strings.HasPrefix(line, "\t\t") {
				continue
			}
			if id, name, ok := splitEntry(line[1:]); ok {
				n.products[uint32(vendor)<<16|uint32(id)] = name
			}
			continue
		}

		id, name, ok := splitEntry(line)
		inVendor = ok
		if ok {
			vendor = id
			n.vendors[id] = name
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return n, nil
}

// splitEntry parses "xxxx  Name".
func splitEntry(s string) (uint16, string, bool) {
	if len(s) < 6 || s[4] != ' ' {
		return 0, "", false
	}
	id, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(id), strings.TrimSpace(s[5:]), true
}

// Vendor returns the vendor name, or "" if unknown.
func (n *Names) Vendor(vid uint16) string {
	if n == nil {
		return ""
	}
	return n.vendors[vid]
}

// Product returns the product name, or "" if unknown.
func (n *Names) Product(vid, pid uint16) string {
	if n == nil {
		return ""
	}
	return n.products[uint32(vid)<<16|uint32(pid)]
}

// Describe joins the known vendor and product names.
func (n *Names) Describe(vid, pid uint16) string {
	vendor, product := n.Vendor(vid), n.Product(vid, pid)
	switch {
	case vendor != "" && product != "":
		return vendor + " " + product
	case vendor != "":
		return vendor
	default:
		return product
	}
}

// Len returns the number of vendors and products.
func (n *Names) Len() (vendors, products int) {
	if n == nil {
		return 0, 0
	}
	return len(n.vendors), len(n.products)
}
