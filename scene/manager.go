package scene

import "github.com/ardnew/badusb/pkg"

// Manager maintains the scene stack and dispatches events.
type Manager struct {
	handler Handler
	stack   []ID
}

// NewManager returns a manager with an empty stack.
func NewManager(h Handler) *Manager {
	return &Manager{handler: h}
}

// Current returns the scene on top of the stack. ok is false if the stack
// is empty.
func (m *Manager) Current() (id ID, ok bool) {
	if len(m.stack) == 0 {
		return 0, false
	}
	return m.stack[len(m.stack)-1], true
}

// Next exits the current scene, pushes id and enters it.
func (m *Manager) Next(id ID) {
	if cur, ok := m.Current(); ok {
		m.handler(cur, Event{Kind: EventExit})
	}
	m.stack = append(m.stack, id)
	pkg.LogDebug(pkg.ComponentScene, "scene next", "scene", id, "depth", len(m.stack))
	m.handler(id, Event{Kind: EventEnter})
}

// Previous exits and pops the current scene, then enters the scene below.
// It returns false if no scene remains.
func (m *Manager) Previous() bool {
	cur, ok := m.Current()
	if !ok {
		return false
	}
	m.handler(cur, Event{Kind: EventExit})
	m.stack = m.stack[:len(m.stack)-1]

	prev, ok := m.Current()
	if !ok {
		pkg.LogDebug(pkg.ComponentScene, "scene stack empty")
		return false
	}
	pkg.LogDebug(pkg.ComponentScene, "scene previous", "scene", prev, "depth", len(m.stack))
	m.handler(prev, Event{Kind: EventEnter})
	return true
}

// SearchAndSwitchToPrevious exits the current scene and pops scenes until
// id is on top, then enters it. It returns false and leaves the stack
// unchanged if id is not below the current scene.
func (m *Manager) SearchAndSwitchToPrevious(id ID) bool {
	idx := -1
	for i := len(m.stack) - 2; i >= 0; i-- {
		if m.stack[i] == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	cur, _ := m.Current()
	m.handler(cur, Event{Kind: EventExit})
	m.stack = m.stack[:idx+1]
	pkg.LogDebug(pkg.ComponentScene, "scene switch back", "scene", id, "depth", len(m.stack))
	m.handler(id, Event{Kind: EventEnter})
	return true
}

// Stop exits the current scene and clears the stack.
func (m *Manager) Stop() {
	if cur, ok := m.Current(); ok {
		m.handler(cur, Event{Kind: EventExit})
	}
	m.stack = m.stack[:0]
	pkg.LogDebug(pkg.ComponentScene, "scene manager stopped")
}

// HandleCustom forwards a custom event to the current scene.
func (m *Manager) HandleCustom(event uint32) bool {
	cur, ok := m.Current()
	if !ok {
		return false
	}
	return m.handler(cur, Event{Kind: EventCustom, Custom: event})
}

// HandleBack forwards a back event to the current scene. If the scene does
// not consume it, the stack is popped. It returns false once the stack is
// empty.
func (m *Manager) HandleBack() bool {
	cur, ok := m.Current()
	if !ok {
		return false
	}
	if m.handler(cur, Event{Kind: EventBack}) {
		return true
	}
	return m.Previous()
}

// HandleTick forwards a tick event to the current scene.
func (m *Manager) HandleTick() {
	if cur, ok := m.Current(); ok {
		m.handler(cur, Event{Kind: EventTick})
	}
}
