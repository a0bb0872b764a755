package gui

import "strings"

// Widget displays static text with optional button hints.
type Widget struct {
	lines    []string
	buttons  map[Key]string
	callback func(key Key)
}

// NewWidget returns an empty widget.
func NewWidget() *Widget {
	return &Widget{buttons: make(map[Key]string)}
}

// Reset clears text and buttons.
func (w *Widget) Reset() {
	w.lines = nil
	w.buttons = make(map[Key]string)
	w.callback = nil
}

// AddText appends text, split on newlines.
func (w *Widget) AddText(text string) {
	w.lines = append(w.lines, strings.Split(text, "\n")...)
}

// AddButton adds a button bound to key. Pressing key invokes cb.
func (w *Widget) AddButton(key Key, label string, cb func(key Key)) {
	w.buttons[key] = label
	w.callback = cb
}

// Render implements [View].
func (w *Widget) Render() []string {
	out := append([]string(nil), w.lines...)
	var hints []string
	for _, key := range []Key{KeyLeft, KeyOK, KeyRight} {
		if label, ok := w.buttons[key]; ok {
			hints = append(hints, "["+key.String()+"] "+label)
		}
	}
	if len(hints) > 0 {
		out = append(out, "", strings.Join(hints, "  "))
	}
	return out
}

// Input implements [View].
func (w *Widget) Input(ev InputEvent) bool {
	if _, ok := w.buttons[ev.Key]; !ok || w.callback == nil {
		return false
	}
	w.callback(ev.Key)
	return true
}
