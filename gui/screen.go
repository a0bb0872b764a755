package gui

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/ardnew/badusb/pkg"
)

// ErrInterrupted is returned by [Screen.Poll] when the user presses Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

// Screen is a terminal [Surface] and [Notifier] backed by tcell.
type Screen struct {
	screen tcell.Screen
	normal tcell.Style
	title  tcell.Style
	open   bool
}

var (
	_ Surface  = (*Screen)(nil)
	_ Notifier = (*Screen)(nil)
)

// NewScreen wraps s. A nil s selects the terminal screen when opened.
func NewScreen(s tcell.Screen) *Screen {
	return &Screen{
		screen: s,
		normal: tcell.StyleDefault,
		title:  tcell.StyleDefault.Reverse(true),
	}
}

// Open initializes the terminal.
func (s *Screen) Open() error {
	if s.open {
		return nil
	}
	if s.screen == nil {
		scr, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		s.screen = scr
	}
	if err := s.screen.Init(); err != nil {
		return err
	}
	s.screen.SetStyle(s.normal)
	s.screen.Clear()
	s.open = true
	pkg.LogDebug(pkg.ComponentGUI, "screen opened")
	return nil
}

// Close restores the terminal.
func (s *Screen) Close() {
	if !s.open {
		return
	}
	s.open = false
	s.screen.Fini()
	pkg.LogDebug(pkg.ComponentGUI, "screen closed")
}

// Draw renders lines, highlighting the first as a title bar.
func (s *Screen) Draw(lines []string) {
	if !s.open {
		return
	}
	s.screen.Clear()
	w, h := s.screen.Size()
	for y, line := range lines {
		if y >= h {
			break
		}
		style := s.normal
		if y == 0 {
			style = s.title
			for x := 0; x < w; x++ {
				s.screen.SetContent(x, y, ' ', nil, style)
			}
		}
		x := 0
		for _, r := range line {
			if x >= w {
				break
			}
			s.screen.SetContent(x, y, r, nil, style)
			x++
		}
	}
	s.screen.Show()
}

// Poll translates key events into input events until ctx is done.
func (s *Screen) Poll(ctx context.Context, events chan<- InputEvent) error {
	if !s.open {
		<-ctx.Done()
		return nil
	}

	stop := context.AfterFunc(ctx, func() {
		s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil // screen finalized
		}
		switch e := ev.(type) {
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			if e.Key() == tcell.KeyCtrlC {
				return ErrInterrupted
			}
			key, ok := translateKey(e)
			if !ok {
				continue
			}
			select {
			case events <- InputEvent{Key: key}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// translateKey maps terminal keys to navigation keys. Arrow keys, vi keys,
// Enter/Space and Escape/Backspace/q are recognized.
func translateKey(e *tcell.EventKey) (Key, bool) {
	switch e.Key() {
	case tcell.KeyUp:
		return KeyUp, true
	case tcell.KeyDown:
		return KeyDown, true
	case tcell.KeyLeft:
		return KeyLeft, true
	case tcell.KeyRight:
		return KeyRight, true
	case tcell.KeyEnter:
		return KeyOK, true
	case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyBack, true
	case tcell.KeyRune:
		switch e.Rune() {
		case 'k':
			return KeyUp, true
		case 'j':
			return KeyDown, true
		case 'h':
			return KeyLeft, true
		case 'l':
			return KeyRight, true
		case ' ':
			return KeyOK, true
		case 'q':
			return KeyBack, true
		}
	}
	return 0, false
}

// Notify beeps for errors and logs every notification.
func (s *Screen) Notify(n Notification) {
	pkg.LogInfo(pkg.ComponentGUI, "notification", "kind", n)
	if !s.open || n != NotifyError {
		return
	}
	if err := s.screen.Beep(); err != nil {
		pkg.LogDebug(pkg.ComponentGUI, "beep failed", "error", err)
	}
}
