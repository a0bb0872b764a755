package app

import (
	"path/filepath"

	"github.com/ardnew/badusb/gui"
	"github.com/ardnew/badusb/scene"
	"github.com/ardnew/badusb/script"
)

func (a *App) workButton(key gui.Key) {
	switch key {
	case gui.KeyOK:
		a.dispatcher.SendCustomEvent(EventToggle)
	case gui.KeyLeft:
		a.dispatcher.SendCustomEvent(EventConfig)
	}
}

func (a *App) workScene(ev scene.Event) bool {
	switch ev.Kind {
	case scene.EventEnter:
		a.openScript()
		a.refreshWork()
		a.dispatcher.SwitchToView(ViewWork)
		return true

	case scene.EventExit:
		// The script stays open across Config; FileSelect and Close
		// release it.
		return true

	case scene.EventCustom:
		switch ev.Custom {
		case EventToggle:
			if a.script == nil {
				a.openScript()
			}
			if a.script != nil {
				a.script.Toggle()
			}
			a.refreshWork()
			return true
		case EventConfig:
			if a.script == nil || !a.script.Status().State.Active() {
				a.scenes.Next(scene.Config)
			}
			return true
		}
		return false

	case scene.EventTick:
		if a.script == nil {
			return true
		}
		before := a.script.Status().State
		a.script.Tick()
		after := a.script.Status().State
		if after != before {
			switch after {
			case script.StateDone:
				a.display.Notify(gui.NotifySuccess)
			case script.StateScriptError, script.StateFileError:
				a.display.Notify(gui.NotifyError)
			}
		}
		a.refreshWork()
		return true
	}
	return false
}

func (a *App) refreshWork() {
	m := gui.WorkModel{
		File:      filepath.Base(a.filePath),
		Layout:    script.LayoutName(a.settings.Layout),
		Interface: a.settings.Interface.String(),
	}
	if a.script == nil {
		m.State = script.StateFileError.String()
		m.Error = a.scriptErr
	} else {
		st := a.script.Status()
		m.State = st.State.String()
		m.Line = st.Line
		m.Lines = st.Lines
		m.Error = st.Error
		m.Running = st.State.Active()
	}
	a.workView.Update(m)
}
