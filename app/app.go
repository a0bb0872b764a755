package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ardnew/badusb/gui"
	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/scene"
	"github.com/ardnew/badusb/script"
	"github.com/ardnew/badusb/settings"
	"github.com/ardnew/badusb/usb"
)

// Script file extension listed by the file browser.
const ScriptExt = ".txt"

// View identifiers registered with the dispatcher.
const (
	ViewFileSelect gui.ViewID = iota
	ViewConfig
	ViewWork
	ViewError
)

// Display is the UI surface. It receives frames and key input and plays
// notifications.
type Display interface {
	gui.Surface
	gui.Notifier
	Open() error
	Close()
}

// Options configures [New].
type Options struct {
	// BaseDir holds scripts and the settings file.
	BaseDir string

	// LayoutDir holds keyboard layout files. The default layout is
	// LayoutDir/DefaultLayout.
	LayoutDir     string
	DefaultLayout string

	// ScriptPath is the entry argument. Empty starts in the file browser.
	ScriptPath string

	Platform usb.Platform
	Engine   script.Engine
	Display  Display

	// TickPeriod defaults to [script.DefaultTickPeriod].
	TickPeriod time.Duration

	// Fatal handles unrecoverable USB errors in New and Close. The default
	// logs and panics. It must not return normally if the process is to
	// halt.
	Fatal func(err error)
}

// App is the application context. All methods other than [New] must be
// called from one goroutine.
type App struct {
	id string

	baseDir   string
	layoutDir string
	filePath  string

	store    *settings.Store
	settings settings.Record

	display    Display
	dispatcher *gui.Dispatcher
	scenes     *scene.Manager

	browser  *gui.FileBrowser
	itemList *gui.ItemList
	workView *gui.WorkView
	widget   *gui.Widget

	engine    script.Engine
	script    script.Script
	scriptErr string
	tick      time.Duration

	guard  *usb.Guard
	reason ErrorReason

	fatal  func(err error)
	closed bool
}

// New builds the application context and enters the initial scene. On
// error everything acquired so far is released.
//
// A failure to switch off the USB configuration leaves the USB state
// unknown. It is passed to [Options.Fatal]. The display is closed whether
// the handler panics or returns; if it returns, New returns the error.
func New(opts Options) (a *App, err error) {
	if opts.Platform == nil || opts.Engine == nil || opts.Display == nil || opts.BaseDir == "" {
		return nil, fmt.Errorf("%w: platform, engine, display and base dir are required",
			pkg.ErrInvalidParameter)
	}

	a = &App{
		id:        uuid.NewString(),
		baseDir:   opts.BaseDir,
		layoutDir: opts.LayoutDir,
		filePath:  opts.ScriptPath,
		display:   opts.Display,
		engine:    opts.Engine,
		tick:      opts.TickPeriod,
		fatal:     opts.Fatal,
	}
	if a.layoutDir == "" {
		a.layoutDir = a.baseDir
	}
	if a.tick <= 0 {
		a.tick = script.DefaultTickPeriod
	}
	if a.fatal == nil {
		a.fatal = fatal
	}
	defaultLayout := opts.DefaultLayout
	if defaultLayout == "" {
		defaultLayout = "en-US" + script.LayoutExt
	}

	a.store = settings.NewStore(
		filepath.Join(a.baseDir, settings.FileName),
		filepath.Join(a.layoutDir, defaultLayout),
	)
	a.settings = a.store.Load()

	display := opts.Display
	if err := display.Open(); err != nil {
		return nil, fmt.Errorf("opening display: %w", err)
	}
	defer func() {
		if err != nil {
			display.Close()
		}
	}()

	a.dispatcher = gui.NewDispatcher()
	a.scenes = scene.NewManager(a.handle)
	a.dispatcher.SetCustomEventCallback(a.scenes.HandleCustom)
	a.dispatcher.SetNavigationEventCallback(a.scenes.HandleBack)
	a.dispatcher.SetTickEventCallback(a.scenes.HandleTick, a.tick)

	a.browser = gui.NewFileBrowser(ScriptExt)
	a.browser.SetSelectCallback(func(string) {
		a.dispatcher.SendCustomEvent(EventFileSelected)
	})
	a.dispatcher.AddView(ViewFileSelect, a.browser)

	a.itemList = gui.NewItemList("Config")
	a.dispatcher.AddView(ViewConfig, a.itemList)

	a.workView = gui.NewWorkView()
	a.workView.SetButtonCallback(a.workButton)
	a.dispatcher.AddView(ViewWork, a.workView)

	a.widget = gui.NewWidget()
	a.dispatcher.AddView(ViewError, a.widget)

	a.dispatcher.AttachToSurface(a.display)

	a.guard, err = usb.Acquire(opts.Platform)
	if err != nil {
		pkg.LogError(pkg.ComponentApp, "USB configuration could not be acquired",
			"run", a.id, "error", err)
		a.fatal(err)
		return nil, err
	}

	switch {
	case a.guard.Locked():
		a.reason = ErrorCloseRPC
		a.scenes.Next(scene.Error)
	case a.filePath != "":
		a.scenes.Next(scene.Work)
	default:
		a.filePath = a.baseDir
		a.scenes.Next(scene.FileSelect)
	}

	pkg.LogInfo(pkg.ComponentApp, "app started",
		"run", a.id, "base", a.baseDir, "script", opts.ScriptPath,
		"layout", a.settings.Layout, "interface", a.settings.Interface,
		"locked", a.guard.Locked())
	return a, nil
}

// ID returns the run identifier attached to this context's logs.
func (a *App) ID() string {
	return a.id
}

// Settings returns the current settings record.
func (a *App) Settings() settings.Record {
	return a.settings
}

// Scene returns the current scene. ok is false once the scene stack is
// empty.
func (a *App) Scene() (id scene.ID, ok bool) {
	return a.scenes.Current()
}

// Reason returns why the Error scene was entered.
func (a *App) Reason() ErrorReason {
	return a.reason
}

// Run processes events until the last scene exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.closed {
		return pkg.ErrClosed
	}
	return a.dispatcher.Run(ctx)
}

// Close releases the context. The script is closed first and the USB
// configuration is restored last; a restore failure is passed to the fatal
// handler. Settings save failures are logged only. A second call returns
// [pkg.ErrClosed].
func (a *App) Close() error {
	if a.closed {
		return pkg.ErrClosed
	}
	a.closed = true

	a.closeScript()

	for _, id := range []gui.ViewID{ViewWork, ViewError, ViewConfig, ViewFileSelect} {
		a.dispatcher.RemoveView(id)
	}
	a.dispatcher = nil
	a.scenes = nil

	a.display.Close()

	if err := a.store.Save(a.settings); err != nil {
		pkg.LogWarn(pkg.ComponentApp, "settings not saved", "run", a.id, "error", err)
	}

	if err := a.guard.Release(); err != nil {
		a.fatal(err)
	}

	pkg.LogInfo(pkg.ComponentApp, "app closed", "run", a.id)
	return nil
}

func fatal(err error) {
	pkg.LogError(pkg.ComponentApp, "fatal", "error", err)
	panic(err)
}

func (a *App) openScript() {
	if a.script != nil {
		return
	}
	s, err := a.engine.Open(a.filePath, script.Options{
		Layout:     a.settings.Layout,
		Interface:  a.settings.Interface,
		TickPeriod: a.tick,
	})
	if err != nil {
		a.scriptErr = err.Error()
		pkg.LogWarn(pkg.ComponentApp, "script open failed",
			"run", a.id, "path", a.filePath, "error", err)
		a.display.Notify(gui.NotifyError)
		return
	}
	a.script = s
	a.scriptErr = ""
	pkg.LogDebug(pkg.ComponentApp, "script opened", "run", a.id, "path", a.filePath)
}

func (a *App) closeScript() {
	if a.script == nil {
		return
	}
	if err := a.script.Close(); err != nil {
		pkg.LogWarn(pkg.ComponentApp, "script close failed", "run", a.id, "error", err)
	}
	a.script = nil
	pkg.LogDebug(pkg.ComponentApp, "script closed", "run", a.id)
}
