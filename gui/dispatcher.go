package gui

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/badusb/pkg"
)

// QueueSize is the capacity of the input and custom event queues.
const QueueSize = 16

// ViewID identifies a view registered with a [Dispatcher].
type ViewID uint8

// Surface displays views and produces key input.
type Surface interface {
	// Draw replaces the displayed content with lines.
	Draw(lines []string)

	// Poll sends key input to events until ctx is done. It returns nil when
	// ctx is done, or an error if input cannot continue.
	Poll(ctx context.Context, events chan<- InputEvent) error
}

// Dispatcher routes queued events to views and callbacks.
//
// Apart from [Dispatcher.Run] and [Dispatcher.SendCustomEvent], methods
// must be called from the goroutine running the event loop, or before Run.
type Dispatcher struct {
	input  chan InputEvent
	custom chan uint32

	views     map[ViewID]View
	current   View
	currentID ViewID

	surface Surface

	tickPeriod   time.Duration
	onTick       func()
	onCustom     func(event uint32) bool
	onNavigation func() bool

	running  bool
	stopping bool
}

// NewDispatcher returns a dispatcher with empty queues and no views.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		input:  make(chan InputEvent, QueueSize),
		custom: make(chan uint32, QueueSize),
		views:  make(map[ViewID]View),
	}
}

// SetTickEventCallback sets the callback invoked every period.
func (d *Dispatcher) SetTickEventCallback(cb func(), period time.Duration) {
	d.onTick = cb
	d.tickPeriod = period
}

// SetCustomEventCallback sets the callback for custom events.
func (d *Dispatcher) SetCustomEventCallback(cb func(event uint32) bool) {
	d.onCustom = cb
}

// SetNavigationEventCallback sets the callback for unconsumed back input.
// Returning false stops the dispatcher.
func (d *Dispatcher) SetNavigationEventCallback(cb func() bool) {
	d.onNavigation = cb
}

// AddView registers v under id.
func (d *Dispatcher) AddView(id ViewID, v View) {
	d.views[id] = v
}

// RemoveView unregisters the view under id. If it is the current view, no
// view is displayed afterwards.
func (d *Dispatcher) RemoveView(id ViewID) {
	if v, ok := d.views[id]; ok && v == d.current {
		d.current = nil
	}
	delete(d.views, id)
}

// SwitchToView makes the view under id current.
func (d *Dispatcher) SwitchToView(id ViewID) {
	v, ok := d.views[id]
	if !ok {
		pkg.LogWarn(pkg.ComponentGUI, "switch to unknown view", "view", id)
		return
	}
	d.current = v
	d.currentID = id
	d.redraw()
}

// CurrentView returns the ID of the current view. ok is false if no view
// is displayed.
func (d *Dispatcher) CurrentView() (id ViewID, ok bool) {
	return d.currentID, d.current != nil
}

// AttachToSurface sets the surface used for drawing and input.
func (d *Dispatcher) AttachToSurface(s Surface) {
	d.surface = s
}

// SendCustomEvent queues a custom event. Events are dropped when the queue
// is full.
func (d *Dispatcher) SendCustomEvent(event uint32) {
	select {
	case d.custom <- event:
	default:
		pkg.LogWarn(pkg.ComponentGUI, "custom event queue full, event dropped", "event", event)
	}
}

// Stop ends the event loop after the current event.
func (d *Dispatcher) Stop() {
	d.stopping = true
}

// Run processes events until [Dispatcher.Stop] is called or ctx is done.
// Surface polling runs on a separate goroutine that only enqueues input.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.running {
		return pkg.ErrAlreadyRunning
	}
	d.running = true
	d.stopping = false
	defer func() { d.running = false }()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(loopCtx)
	if d.surface != nil {
		surface := d.surface
		g.Go(func() error {
			return surface.Poll(gctx, d.input)
		})
	}
	g.Go(func() error {
		defer cancel()
		return d.loop(gctx)
	})

	pkg.LogDebug(pkg.ComponentGUI, "dispatcher running", "tick", d.tickPeriod)
	err := g.Wait()
	pkg.LogDebug(pkg.ComponentGUI, "dispatcher stopped", "error", err)
	return err
}

func (d *Dispatcher) loop(ctx context.Context) error {
	var tick <-chan time.Time
	if d.onTick != nil && d.tickPeriod > 0 {
		ticker := time.NewTicker(d.tickPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	d.redraw()
	for !d.stopping {
		// Custom events raised while handling input run before the next
		// queued input.
		select {
		case ev := <-d.custom:
			if d.onCustom != nil {
				d.onCustom(ev)
			}
			d.redraw()
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return nil
		case ev := <-d.input:
			d.handleInput(ev)
		case ev := <-d.custom:
			if d.onCustom != nil {
				d.onCustom(ev)
			}
		case <-tick:
			d.onTick()
		}
		d.redraw()
	}
	return nil
}

func (d *Dispatcher) handleInput(ev InputEvent) {
	if d.current != nil && d.current.Input(ev) {
		return
	}
	if ev.Key != KeyBack {
		return
	}
	if d.onNavigation == nil || !d.onNavigation() {
		d.Stop()
	}
}

func (d *Dispatcher) redraw() {
	if d.surface == nil || d.current == nil {
		return
	}
	d.surface.Draw(d.current.Render())
}
