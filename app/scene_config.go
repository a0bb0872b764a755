package app

import (
	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/scene"
	"github.com/ardnew/badusb/script"
	"github.com/ardnew/badusb/settings"
)

var interfaces = []settings.Interface{settings.InterfaceUSB, settings.InterfaceBLE}

func (a *App) configScene(ev scene.Event) bool {
	switch ev.Kind {
	case scene.EventEnter:
		a.buildConfig()
		a.itemList.SetEnterCallback(a.confirmConfig)
		a.dispatcher.SwitchToView(ViewConfig)
		return true

	case scene.EventExit:
		a.itemList.Reset()
		return true
	}
	return false
}

func (a *App) buildConfig() {
	a.itemList.Reset()

	layouts, err := script.ListLayouts(a.layoutDir)
	if err != nil {
		pkg.LogWarn(pkg.ComponentApp, "layout folder unreadable",
			"run", a.id, "dir", a.layoutDir, "error", err)
	}
	current := -1
	for i, path := range layouts {
		if path == a.settings.Layout {
			current = i
			break
		}
	}
	if current < 0 {
		layouts = append([]string{a.settings.Layout}, layouts...)
		current = 0
	}
	names := make([]string, len(layouts))
	for i, path := range layouts {
		names[i] = script.LayoutName(path)
	}
	a.itemList.Add("Keyboard layout", names, current, func(i int) {
		a.settings.Layout = layouts[i]
		pkg.LogInfo(pkg.ComponentApp, "layout changed", "run", a.id, "layout", layouts[i])
		if a.script == nil {
			return
		}
		if err := a.script.SetLayout(layouts[i]); err != nil {
			// Reopened on return to Work, which reports the error.
			pkg.LogWarn(pkg.ComponentApp, "layout not applied",
				"run", a.id, "layout", layouts[i], "error", err)
			a.closeScript()
		}
	})

	values := make([]string, len(interfaces))
	index := 0
	for i, iface := range interfaces {
		values[i] = iface.String()
		if iface == a.settings.Interface {
			index = i
		}
	}
	a.itemList.Add("Interface", values, index, func(i int) {
		a.settings.Interface = interfaces[i]
		pkg.LogInfo(pkg.ComponentApp, "interface changed", "run", a.id, "interface", interfaces[i])
		// The transport is chosen at open.
		a.closeScript()
	})
}

// confirmConfig returns to Work when OK is pressed on an item.
func (a *App) confirmConfig(index int) {
	items := a.itemList.Items()
	if index >= 0 && index < len(items) {
		pkg.LogDebug(pkg.ComponentApp, "config confirmed",
			"run", a.id, "item", items[index].Label, "value", items[index].Value())
	}
	a.scenes.SearchAndSwitchToPrevious(scene.Work)
}
