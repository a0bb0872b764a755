package gui

import "fmt"

// WorkModel is the state shown by a [WorkView].
type WorkModel struct {
	File      string
	Layout    string
	Interface string
	State     string
	Line      int
	Lines     int
	Error     string
	Running   bool
}

// WorkView shows script execution status.
type WorkView struct {
	model    WorkModel
	callback func(key Key)
}

// NewWorkView returns an empty work view.
func NewWorkView() *WorkView {
	return &WorkView{}
}

// Update replaces the displayed state.
func (v *WorkView) Update(m WorkModel) {
	v.model = m
}

// Model returns the displayed state.
func (v *WorkView) Model() WorkModel {
	return v.model
}

// SetButtonCallback sets the callback for OK and, while not running, Left.
func (v *WorkView) SetButtonCallback(cb func(key Key)) {
	v.callback = cb
}

// Render implements [View].
func (v *WorkView) Render() []string {
	m := v.model
	out := []string{
		fmt.Sprintf("BadUSB [%s] %s", m.Interface, m.Layout),
		m.File,
		"",
	}
	if m.Lines > 0 {
		out = append(out, fmt.Sprintf("%s  %d/%d", m.State, m.Line, m.Lines))
	} else {
		out = append(out, m.State)
	}
	if m.Error != "" {
		out = append(out, m.Error)
	}

	action := "Run"
	if m.Running {
		action = "Pause"
	}
	hints := "[ok] " + action
	if !m.Running {
		hints = "[left] Config  " + hints
	}
	return append(out, "", hints)
}

// Input implements [View].
func (v *WorkView) Input(ev InputEvent) bool {
	if v.callback == nil {
		return false
	}
	switch ev.Key {
	case KeyOK:
		v.callback(ev.Key)
		return true
	case KeyLeft:
		if v.model.Running {
			return false
		}
		v.callback(ev.Key)
		return true
	}
	return false
}
