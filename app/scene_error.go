package app

import (
	"github.com/ardnew/badusb/gui"
	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/scene"
)

func (a *App) errorScene(ev scene.Event) bool {
	switch ev.Kind {
	case scene.EventEnter:
		pkg.LogWarn(pkg.ComponentApp, "error scene", "run", a.id, "error", a.reason.Err())
		a.widget.Reset()
		a.widget.AddText(a.reason.String())
		a.widget.AddButton(gui.KeyLeft, "Back", func(gui.Key) {
			a.dispatcher.SendCustomEvent(EventErrorBack)
		})
		a.dispatcher.SwitchToView(ViewError)
		return true

	case scene.EventExit:
		a.widget.Reset()
		return true

	case scene.EventBack:
		a.stop()
		return true

	case scene.EventCustom:
		if ev.Custom != EventErrorBack {
			return false
		}
		a.stop()
		return true
	}
	return false
}

// stop leaves every scene and ends the event loop.
func (a *App) stop() {
	a.scenes.Stop()
	a.dispatcher.Stop()
}
