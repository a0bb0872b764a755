package settings

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ardnew/badusb/pkg"
)

// File header values.
const (
	FileType = "Flipper BadUSB Settings File"
	Version  = 1
)

// FileName is the settings file name inside the base folder.
const FileName = ".badusb.settings"

// LayoutSize is the exact size in bytes of a valid keyboard layout table.
const LayoutSize = 256

// Interface selects the HID transport used to emulate a keyboard.
type Interface uint32

// HID interface values. The numeric values are stored in the settings file.
const (
	InterfaceUSB Interface = iota
	InterfaceBLE
)

// String returns a human-readable interface name.
func (i Interface) String() string {
	switch i {
	case InterfaceUSB:
		return "USB"
	case InterfaceBLE:
		return "BLE"
	default:
		return "Unknown"
	}
}

// Valid reports whether i is one of the known interfaces.
func (i Interface) Valid() bool {
	return i <= InterfaceBLE
}

// ParseInterface converts an interface name (usb, ble) to an [Interface].
func ParseInterface(name string) (Interface, error) {
	switch name {
	case "usb", "USB":
		return InterfaceUSB, nil
	case "ble", "BLE":
		return InterfaceBLE, nil
	default:
		return InterfaceUSB, fmt.Errorf("%w: interface %q", pkg.ErrInvalidParameter, name)
	}
}

// Record is the persisted settings record.
type Record struct {
	Layout    string
	Interface Interface
}

// layoutKey is read and written verbatim, outside the YAML codec.
const layoutKey = "layout"

// document mirrors the on-disk key/value layout, except the layout line.
// Pointer fields detect keys missing from the file.
type document struct {
	FileType  *string `yaml:"Filetype,omitempty"`
	Version   *uint32 `yaml:"Version,omitempty"`
	Interface *uint32 `yaml:"interface,omitempty"`
}

// Store loads and saves the settings record at a fixed path.
type Store struct {
	path          string
	defaultLayout string
}

// NewStore returns a store for the settings file at path. defaultLayout is
// substituted whenever the stored layout is missing or invalid.
func NewStore(path, defaultLayout string) *Store {
	return &Store{path: path, defaultLayout: defaultLayout}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// DefaultLayout returns the built-in layout path.
func (s *Store) DefaultLayout() string {
	return s.defaultLayout
}

// Default returns the record used when no valid settings exist.
func (s *Store) Default() Record {
	return Record{Layout: s.defaultLayout, Interface: InterfaceUSB}
}

// Load reads the settings record. It never fails; see the package
// documentation for the fallback rules.
func (s *Store) Load() Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		pkg.LogDebug(pkg.ComponentSettings, "settings unavailable, using defaults",
			"path", s.path, "error", err)
		return s.Default()
	}

	rec, err := Decode(data)
	if err != nil {
		pkg.LogWarn(pkg.ComponentSettings, "settings rejected, using defaults",
			"path", s.path, "error", err)
		return s.Default()
	}

	if !ValidLayout(rec.Layout) {
		pkg.LogInfo(pkg.ComponentSettings, "layout invalid, using default",
			"layout", rec.Layout, "default", s.defaultLayout)
		rec.Layout = s.defaultLayout
	}

	pkg.LogDebug(pkg.ComponentSettings, "settings loaded",
		"layout", rec.Layout, "interface", rec.Interface)
	return rec
}

// Save writes rec to the settings file. The file is replaced atomically; on
// failure the previous contents are left in place.
func (s *Store) Save(rec Record) error {
	data, err := Encode(rec)
	if err != nil {
		pkg.LogError(pkg.ComponentSettings, "settings encode failed", "error", err)
		return err
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		pkg.LogError(pkg.ComponentSettings, "settings save failed",
			"path", s.path, "error", err)
		return err
	}

	pkg.LogDebug(pkg.ComponentSettings, "settings saved",
		"path", s.path, "layout", rec.Layout, "interface", rec.Interface)
	return nil
}

// Decode parses a settings file body. The header must match [FileType] and
// [Version] exactly, and both fields must be present with an in-range
// interface. The layout value is the raw text after "layout: "; it is not
// validated against the filesystem.
func Decode(data []byte) (Record, error) {
	layout, rest, hasLayout := cutRawField(data, layoutKey)

	var doc document
	if err := yaml.Unmarshal(rest, &doc); err != nil {
		return Record{}, fmt.Errorf("%w: %v", pkg.ErrSettingsHeader, err)
	}

	if doc.FileType == nil || *doc.FileType != FileType {
		return Record{}, fmt.Errorf("%w: file type", pkg.ErrSettingsHeader)
	}
	if doc.Version == nil || *doc.Version != Version {
		return Record{}, fmt.Errorf("%w: version", pkg.ErrSettingsHeader)
	}
	if !hasLayout {
		return Record{}, fmt.Errorf("%w: layout missing", pkg.ErrSettingsField)
	}
	if doc.Interface == nil {
		return Record{}, fmt.Errorf("%w: interface missing", pkg.ErrSettingsField)
	}

	iface := Interface(*doc.Interface)
	if !iface.Valid() {
		return Record{}, fmt.Errorf("%w: interface %d out of range", pkg.ErrSettingsField, *doc.Interface)
	}

	return Record{Layout: layout, Interface: iface}, nil
}

// cutRawField removes the first line holding key and returns its value
// verbatim, without YAML quoting or comment rules.
func cutRawField(data []byte, key string) (value string, rest []byte, ok bool) {
	prefix := []byte(key + ":")
	lines := bytes.SplitAfter(data, []byte("\n"))
	for i, line := range lines {
		if !bytes.HasPrefix(line, prefix) {
			continue
		}
		v := bytes.TrimRight(line[len(prefix):], "\r\n")
		v = bytes.TrimPrefix(v, []byte(" "))
		rest = bytes.Join(append(lines[:i:i], lines[i+1:]...), nil)
		return string(v), rest, true
	}
	return "", data, false
}

// Encode serializes rec with the settings header.
func Encode(rec Record) ([]byte, error) {
	if !rec.Interface.Valid() {
		return nil, fmt.Errorf("%w: interface %d out of range", pkg.ErrSettingsField, rec.Interface)
	}

	if strings.ContainsAny(rec.Layout, "\r\n") {
		return nil, fmt.Errorf("%w: layout contains a line break", pkg.ErrSettingsField)
	}

	fileType := FileType
	version := uint32(Version)
	iface := uint32(rec.Interface)

	var buf bytes.Buffer
	if err := encodeYAML(&buf, document{FileType: &fileType, Version: &version}); err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, "%s: %s\n", layoutKey, rec.Layout)
	if err := encodeYAML(&buf, document{Interface: &iface}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeYAML(buf *bytes.Buffer, doc document) error {
	enc := yaml.NewEncoder(buf)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// ValidLayout reports whether path names a regular file of exactly
// [LayoutSize] bytes.
func ValidLayout(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() == LayoutSize
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
