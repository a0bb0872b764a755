package gui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxBrowserRows is the number of entries shown at once.
const maxBrowserRows = 8

// FileBrowser lists files with a given extension in one folder.
type FileBrowser struct {
	ext      string
	dir      string
	entries  []string
	selected int
	onSelect func(path string)
}

// NewFileBrowser returns a browser for files ending in ext.
func NewFileBrowser(ext string) *FileBrowser {
	return &FileBrowser{ext: ext}
}

// SetSelectCallback sets the callback invoked with the chosen path.
func (b *FileBrowser) SetSelectCallback(cb func(path string)) {
	b.onSelect = cb
}

// Browse lists dir, selecting preselect if present. Hidden files are
// skipped. It returns the number of entries.
func (b *FileBrowser) Browse(dir, preselect string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.dir, b.entries, b.selected = dir, nil, 0
		return 0, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, b.ext) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	b.dir = dir
	b.entries = names
	b.selected = 0
	for i, name := range names {
		if filepath.Join(dir, name) == preselect {
			b.selected = i
			break
		}
	}
	return len(names), nil
}

// Selected returns the path of the highlighted entry, or "" if empty.
func (b *FileBrowser) Selected() string {
	if len(b.entries) == 0 {
		return ""
	}
	return filepath.Join(b.dir, b.entries[b.selected])
}

// Render implements [View].
func (b *FileBrowser) Render() []string {
	out := []string{"Select script: " + b.dir}
	start := 0
	if b.selected >= maxBrowserRows {
		start = b.selected - maxBrowserRows + 1
	}
	for i := start; i < len(b.entries) && i < start+maxBrowserRows; i++ {
		cursor := " "
		if i == b.selected {
			cursor = ">"
		}
		out = append(out, cursor+" "+b.entries[i])
	}
	return out
}

// Input implements [View].
func (b *FileBrowser) Input(ev InputEvent) bool {
	switch ev.Key {
	case KeyUp:
		if b.selected > 0 {
			b.selected--
		}
		return true
	case KeyDown:
		if b.selected < len(b.entries)-1 {
			b.selected++
		}
		return true
	case KeyOK:
		if path := b.Selected(); path != "" && b.onSelect != nil {
			b.onSelect(path)
		}
		return true
	}
	return false
}
