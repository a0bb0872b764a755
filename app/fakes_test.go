package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardnew/badusb/gui"
	"github.com/ardnew/badusb/script"
	"github.com/ardnew/badusb/settings"
	"github.com/ardnew/badusb/usb"
)

var errFake = errors.New("fake failure")

type journal struct {
	entries []string
}

func (j *journal) add(s string) {
	if j != nil {
		j.entries = append(j.entries, s)
	}
}

type namedConfig string

func (c namedConfig) String() string { return string(c) }

type fakePlatform struct {
	locked      bool
	active      usb.Config
	calls       []usb.Config
	failAcquire bool
	failRestore bool
	log         *journal
	onSet       func(cfg usb.Config)
}

func (p *fakePlatform) IsLocked() bool { return p.locked }

func (p *fakePlatform) Config() usb.Config { return p.active }

func (p *fakePlatform) SetConfig(cfg usb.Config) error {
	p.calls = append(p.calls, cfg)
	if cfg == nil {
		p.log.add("usb none")
		if p.failAcquire {
			return errFake
		}
	} else {
		p.log.add("usb restore")
		if p.onSet != nil {
			p.onSet(cfg)
		}
		if p.failRestore {
			return errFake
		}
	}
	p.active = cfg
	return nil
}

type fakeScript struct {
	status    script.Status
	toggles   int
	ticks     int
	closes    int
	layouts   []string
	layoutErr error
	log       *journal
}

func (s *fakeScript) Toggle() {
	s.toggles++
	switch s.status.State {
	case script.StateIdle, script.StateDone, script.StatePaused:
		s.status.State = script.StateRunning
	case script.StateRunning:
		s.status.State = script.StatePaused
	}
}

func (s *fakeScript) Tick() {
	s.ticks++
	if s.status.State != script.StateRunning {
		return
	}
	s.status.Line++
	if s.status.Line >= s.status.Lines {
		s.status.State = script.StateDone
	}
}

func (s *fakeScript) Status() script.Status { return s.status }

func (s *fakeScript) SetLayout(path string) error {
	if s.layoutErr != nil {
		return s.layoutErr
	}
	s.layouts = append(s.layouts, path)
	return nil
}

func (s *fakeScript) Close() error {
	s.closes++
	s.log.add("script close")
	return nil
}

type fakeEngine struct {
	paths   []string
	opts    []script.Options
	scripts []*fakeScript
	err     error
	lines   int
	log     *journal
}

func (e *fakeEngine) Open(path string, opts script.Options) (script.Script, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.paths = append(e.paths, path)
	e.opts = append(e.opts, opts)
	lines := e.lines
	if lines == 0 {
		lines = 3
	}
	s := &fakeScript{status: script.Status{State: script.StateIdle, Lines: lines}, log: e.log}
	e.scripts = append(e.scripts, s)
	return s, nil
}

func (e *fakeEngine) last() *fakeScript {
	if len(e.scripts) == 0 {
		return nil
	}
	return e.scripts[len(e.scripts)-1]
}

type fakeDisplay struct {
	opens         int
	closes        int
	frame         []string
	notifications []gui.Notification
	log           *journal
}

func (d *fakeDisplay) Open() error {
	d.opens++
	return nil
}

func (d *fakeDisplay) Close() {
	d.closes++
	d.log.add("display close")
}

func (d *fakeDisplay) Draw(lines []string) {
	d.frame = append([]string(nil), lines...)
}

func (d *fakeDisplay) Poll(ctx context.Context, _ chan<- gui.InputEvent) error {
	<-ctx.Done()
	return nil
}

func (d *fakeDisplay) Notify(n gui.Notification) {
	d.notifications = append(d.notifications, n)
}

type fixture struct {
	base      string
	layoutDir string
	platform  *fakePlatform
	engine    *fakeEngine
	display   *fakeDisplay
	log       *journal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	layoutDir := filepath.Join(base, "assets", "layouts")
	if err := os.MkdirAll(layoutDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f := &fixture{
		base:      base,
		layoutDir: layoutDir,
		log:       &journal{},
	}
	f.platform = &fakePlatform{active: namedConfig("cdc"), log: f.log}
	f.engine = &fakeEngine{log: f.log}
	f.display = &fakeDisplay{log: f.log}

	f.writeFile(t, filepath.Join(layoutDir, "en-US.kl"), settings.LayoutSize)
	f.writeFile(t, filepath.Join(layoutDir, "de-DE.kl"), settings.LayoutSize)
	f.writeFile(t, filepath.Join(layoutDir, "short.kl"), 10)
	return f
}

func (f *fixture) writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func (f *fixture) writeScript(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.base, name)
	if err := os.WriteFile(path, []byte("REM test\nSTRING hello\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func (f *fixture) layout(name string) string {
	return filepath.Join(f.layoutDir, name+".kl")
}

func (f *fixture) settingsPath() string {
	return filepath.Join(f.base, settings.FileName)
}

func (f *fixture) store() *settings.Store {
	return settings.NewStore(f.settingsPath(), f.layout("en-US"))
}

func (f *fixture) options(scriptPath string) Options {
	return Options{
		BaseDir:       f.base,
		LayoutDir:     f.layoutDir,
		DefaultLayout: "en-US.kl",
		ScriptPath:    scriptPath,
		Platform:      f.platform,
		Engine:        f.engine,
		Display:       f.display,
		TickPeriod:    10 * time.Millisecond,
		Fatal: func(err error) {
			panic(err)
		},
	}
}

func (f *fixture) newApp(t *testing.T, scriptPath string) *App {
	t.Helper()
	a, err := New(f.options(scriptPath))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
