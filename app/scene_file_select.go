package app

import (
	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/scene"
)

func (a *App) fileSelectScene(ev scene.Event) bool {
	switch ev.Kind {
	case scene.EventEnter:
		a.closeScript()
		n, err := a.browser.Browse(a.baseDir, a.filePath)
		if err == nil && n == 0 {
			err = pkg.ErrNoScripts
		}
		if err != nil {
			pkg.LogWarn(pkg.ComponentApp, "no scripts to select",
				"run", a.id, "dir", a.baseDir, "error", err)
			a.reason = ErrorNoFiles
			a.scenes.Next(scene.Error)
			return true
		}
		a.dispatcher.SwitchToView(ViewFileSelect)
		return true

	case scene.EventCustom:
		if ev.Custom != EventFileSelected {
			return false
		}
		a.filePath = a.browser.Selected()
		pkg.LogInfo(pkg.ComponentApp, "script selected", "run", a.id, "path", a.filePath)
		a.scenes.Next(scene.Work)
		return true
	}
	return false
}
