package gui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ardnew/badusb/pkg"
)

// =============================================================================
// Helpers
// =============================================================================

// fakeSurface replays keys and records frames.
type fakeSurface struct {
	mutex  sync.Mutex
	keys   []Key
	frames [][]string
}

func (s *fakeSurface) Draw(lines []string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.frames = append(s.frames, append([]string(nil), lines...))
}

func (s *fakeSurface) Poll(ctx context.Context, events chan<- InputEvent) error {
	for _, k := range s.keys {
		select {
		case events <- InputEvent{Key: k}:
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

func (s *fakeSurface) lastFrame() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// recordView records input and consumes keys listed in consume.
type recordView struct {
	text    string
	inputs  []Key
	consume map[Key]bool
}

func (v *recordView) Render() []string { return []string{v.text} }

func (v *recordView) Input(ev InputEvent) bool {
	v.inputs = append(v.inputs, ev.Key)
	return v.consume[ev.Key]
}

func runWithTimeout(t *testing.T, d *Dispatcher) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := d.Run(ctx)
	if ctx.Err() != nil {
		t.Fatal("dispatcher did not stop before timeout")
	}
	return err
}

// =============================================================================
// Dispatcher Tests
// =============================================================================

func TestDispatcherUnconsumedBackStops(t *testing.T) {
	surface := &fakeSurface{keys: []Key{KeyUp, KeyDown, KeyBack}}
	view := &recordView{text: "main", consume: map[Key]bool{KeyUp: true}}

	d := NewDispatcher()
	d.AddView(1, view)
	d.AttachToSurface(surface)
	d.SwitchToView(1)

	navigations := 0
	d.SetNavigationEventCallback(func() bool {
		navigations++
		return false
	})

	if err := runWithTimeout(t, d); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if navigations != 1 {
		t.Errorf("navigation callback called %d times, want 1", navigations)
	}
	if len(view.inputs) != 3 {
		t.Errorf("view received %v, want 3 keys", view.inputs)
	}
	if frame := surface.lastFrame(); len(frame) != 1 || frame[0] != "main" {
		t.Errorf("last frame = %v", frame)
	}
}

func TestDispatcherNavigationConsumed(t *testing.T) {
	surface := &fakeSurface{keys: []Key{KeyBack, KeyBack}}
	d := NewDispatcher()
	d.AddView(1, &recordView{})
	d.SwitchToView(1)
	d.AttachToSurface(surface)

	calls := 0
	d.SetNavigationEventCallback(func() bool {
		calls++
		return calls < 2
	})

	if err := runWithTimeout(t, d); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("navigation callback called %d times, want 2", calls)
	}
}

func TestDispatcherCustomEvents(t *testing.T) {
	d := NewDispatcher()
	var got []uint32
	d.SetCustomEventCallback(func(ev uint32) bool {
		got = append(got, ev)
		if ev == 3 {
			d.Stop()
		}
		return true
	})

	d.SendCustomEvent(1)
	d.SendCustomEvent(2)
	d.SendCustomEvent(3)

	if err := runWithTimeout(t, d); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("custom events = %v, want [1 2 3]", got)
	}
}

func TestDispatcherCustomQueueFull(t *testing.T) {
	d := NewDispatcher()
	for i := 0; i < QueueSize+4; i++ {
		d.SendCustomEvent(uint32(i))
	}
	if n := len(d.custom); n != QueueSize {
		t.Errorf("queued %d events, want %d", n, QueueSize)
	}
}

func TestDispatcherTick(t *testing.T) {
	d := NewDispatcher()
	ticks := 0
	d.SetTickEventCallback(func() {
		ticks++
		if ticks == 3 {
			d.Stop()
		}
	}, time.Millisecond)

	if err := runWithTimeout(t, d); err != nil {
		t.Fatal(err)
	}
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestDispatcherContextCancel(t *testing.T) {
	d := NewDispatcher()
	d.AttachToSurface(&fakeSurface{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Run(ctx); err != nil {
		t.Errorf("Run() with cancelled context error = %v", err)
	}
}

func TestDispatcherPollError(t *testing.T) {
	d := NewDispatcher()
	d.AttachToSurface(errSurface{})
	if err := runWithTimeout(t, d); !errors.Is(err, ErrInterrupted) {
		t.Errorf("Run() error = %v, want ErrInterrupted", err)
	}
}

type errSurface struct{}

func (errSurface) Draw([]string) {}

func (errSurface) Poll(context.Context, chan<- InputEvent) error { return ErrInterrupted }

func TestDispatcherAlreadyRunning(t *testing.T) {
	d := NewDispatcher()
	var inner error
	d.SetCustomEventCallback(func(uint32) bool {
		inner = d.Run(context.Background())
		d.Stop()
		return true
	})
	d.SendCustomEvent(0)

	if err := runWithTimeout(t, d); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(inner, pkg.ErrAlreadyRunning) {
		t.Errorf("nested Run() error = %v, want ErrAlreadyRunning", inner)
	}
}

func TestDispatcherViews(t *testing.T) {
	d := NewDispatcher()
	if _, ok := d.CurrentView(); ok {
		t.Fatal("CurrentView() ok with no views")
	}

	d.AddView(2, &recordView{})
	d.SwitchToView(3) // unknown, ignored
	if _, ok := d.CurrentView(); ok {
		t.Fatal("switched to unknown view")
	}

	d.SwitchToView(2)
	if id, ok := d.CurrentView(); !ok || id != 2 {
		t.Fatalf("CurrentView() = %d, %v", id, ok)
	}

	d.RemoveView(2)
	if _, ok := d.CurrentView(); ok {
		t.Error("removed view still current")
	}
}

type funcView func(ev InputEvent) bool

func (funcView) Render() []string { return nil }

func (f funcView) Input(ev InputEvent) bool { return f(ev) }

func TestDispatcherCustomBeforeNextInput(t *testing.T) {
	d := NewDispatcher()
	var order []string
	d.AddView(1, funcView(func(ev InputEvent) bool {
		order = append(order, "input "+ev.Key.String())
		if ev.Key == KeyOK {
			d.SendCustomEvent(7)
			return true
		}
		return false
	}))
	d.SwitchToView(1)
	d.SetCustomEventCallback(func(uint32) bool {
		order = append(order, "custom")
		return true
	})
	d.AttachToSurface(&fakeSurface{keys: []Key{KeyOK, KeyBack}})

	if err := runWithTimeout(t, d); err != nil {
		t.Fatal(err)
	}
	want := []string{"input ok", "custom", "input back"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}
