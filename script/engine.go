package script

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/badusb/pkg"
	"github.com/ardnew/badusb/settings"
	"github.com/ardnew/badusb/usb"
)

// DefaultTickPeriod is used when [Options.TickPeriod] is zero.
const DefaultTickPeriod = 500 * time.Millisecond

// Command keywords handled by the line engine.
const (
	cmdRem           = "REM"
	cmdDelay         = "DELAY"
	cmdDefaultDelay  = "DEFAULT_DELAY"
	cmdDefaultDelay2 = "DEFAULTDELAY"
	cmdRepeat        = "REPEAT"
	cmdString        = "STRING"
	cmdStringLn      = "STRINGLN"
)

type lineEngine struct {
	out      io.Writer
	platform usb.Platform
	hid      usb.Config
}

// NewEngine returns the line-stepping engine. Keystrokes are resolved
// against the layout but not sent anywhere.
func NewEngine() Engine {
	return lineEngine{}
}

// NewReportEngine returns a line-stepping engine that writes keyboard
// reports to out, such as a /dev/hidgN device of a configfs HID function.
// Reports are only written for [settings.InterfaceUSB].
//
// If platform and hid are not nil, hid is activated on platform while a USB
// script is open and deactivated when it is closed, so that out belongs to
// a bound gadget.
func NewReportEngine(out io.Writer, platform usb.Platform, hid usb.Config) Engine {
	return lineEngine{out: out, platform: platform, hid: hid}
}

// Open reads the script and layout. Errors reading either are returned and
// no handle is created.
func (e lineEngine) Open(path string, opts Options) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	lines, err := splitLines(data)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	layout, err := LoadLayout(opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("open script layout: %w", err)
	}

	tick := opts.TickPeriod
	if tick <= 0 {
		tick = DefaultTickPeriod
	}

	s := &lineScript{
		path:    path,
		lines:   lines,
		layout:  layout,
		tick:    tick,
		state:   StateIdle,
		lastCmd: -1,
	}
	if e.out != nil {
		if opts.Interface == settings.InterfaceUSB {
			if err := e.bind(); err != nil {
				return nil, err
			}
			s.out = e.out
			if e.platform != nil && e.hid != nil {
				s.platform = e.platform
			}
		} else {
			pkg.LogWarn(pkg.ComponentScript, "no report transport for interface",
				"interface", opts.Interface)
		}
	}
	pkg.LogInfo(pkg.ComponentScript, "script opened",
		"path", path, "lines", len(s.lines), "layout", LayoutName(opts.Layout),
		"interface", opts.Interface)
	return s, nil
}

// bind activates the HID configuration, if any.
func (e lineEngine) bind() error {
	if e.platform == nil || e.hid == nil {
		return nil
	}
	if err := e.platform.SetConfig(e.hid); err != nil {
		return fmt.Errorf("%w: bind %s: %v", pkg.ErrUSBConfig, e.hid, err)
	}
	pkg.LogInfo(pkg.ComponentScript, "HID configuration active", "config", e.hid.String())
	return nil
}

// lineScript executes one command per tick. A REPEAT runs one repetition
// per tick.
type lineScript struct {
	path     string
	lines    []string
	layout   *Layout
	tick     time.Duration
	out      io.Writer
	platform usb.Platform // Set while the HID configuration is active

	state        State
	pc           int // Index of the next line
	wait         int // Ticks left in the current delay
	defaultDelay int // Ticks inserted after every command
	lastCmd      int // Index of the last executed command, for REPEAT
	repeat       int // Repetitions of lastCmd still to run
	repeatLine   int // Index of the REPEAT line
	errLine      int
	errText      string
	closed       bool
}

// splitLines splits data into lines. No line can exceed the token limit,
// since the limit is the size of data.
func splitLines(data []byte) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(nil, max(len(data)+1, bufio.MaxScanTokenSize))
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *lineScript) Toggle() {
	if s.closed {
		return
	}
	switch s.state {
	case StateIdle, StateDone:
		s.pc, s.wait, s.lastCmd, s.defaultDelay, s.repeat = 0, 0, -1, 0, 0
		s.state = StateRunning
	case StateRunning, StateDelay:
		s.state = StatePaused
	case StatePaused:
		if s.wait > 0 {
			s.state = StateDelay
		} else {
			s.state = StateRunning
		}
	}
	pkg.LogDebug(pkg.ComponentScript, "script toggled", "state", s.state)
}

func (s *lineScript) Tick() {
	if s.closed {
		return
	}
	switch s.state {
	case StateDelay:
		s.wait--
		if s.wait <= 0 {
			s.wait = 0
			s.state = StateRunning
		}
	case StateRunning:
		s.step()
	}
}

// step runs the next repetition, or else the next non-empty line.
func (s *lineScript) step() {
	var (
		line int
		wait int
		err  error
	)
	if s.repeat > 0 {
		line = s.repeatLine
		wait, err = s.repeatOnce()
	} else {
		for s.pc < len(s.lines) && isBlank(s.lines[s.pc]) {
			s.pc++
		}
		if s.pc >= len(s.lines) {
			s.state = StateDone
			pkg.LogInfo(pkg.ComponentScript, "script done", "path", s.path)
			return
		}
		line = s.pc
		wait, err = s.exec(s.lines[line], line)
		s.pc++
	}
	if err != nil {
		s.repeat = 0
		s.state = StateScriptError
		s.errLine = line + 1
		s.errText = err.Error()
		pkg.LogWarn(pkg.ComponentScript, "script error", "line", s.errLine, "error", err)
		return
	}

	wait += s.defaultDelay
	if wait > 0 {
		s.wait = wait
		s.state = StateDelay
	}
}

// exec runs a single command and returns the ticks to wait afterwards.
func (s *lineScript) exec(text string, line int) (int, error) {
	keyword, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	arg = strings.TrimSpace(arg)

	switch keyword {
	case cmdRem:
		return 0, nil
	case cmdDelay:
		ms, err := parseMillis(arg)
		if err != nil {
			return 0, err
		}
		s.lastCmd = line
		return s.ticks(ms), nil
	case cmdDefaultDelay, cmdDefaultDelay2:
		ms, err := parseMillis(arg)
		if err != nil {
			return 0, err
		}
		s.defaultDelay = s.ticks(ms)
		return 0, nil
	case cmdRepeat:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%w: REPEAT %q", pkg.ErrScriptSyntax, arg)
		}
		if s.lastCmd < 0 {
			return 0, fmt.Errorf("%w: REPEAT without command", pkg.ErrScriptSyntax)
		}
		s.repeat = n
		s.repeatLine = line
		return s.repeatOnce()
	case cmdString, cmdStringLn:
		if err := s.typeString(arg); err != nil {
			return 0, err
		}
		if keyword == cmdStringLn {
			if err := s.press(0, namedKeys["ENTER"]); err != nil {
				return 0, err
			}
		}
		s.lastCmd = line
		return 0, nil
	default:
		if !isKeyName(keyword) {
			return 0, fmt.Errorf("%w: unknown command %q", pkg.ErrScriptSyntax, keyword)
		}
		if err := s.pressCombo(strings.Fields(text)); err != nil {
			return 0, err
		}
		s.lastCmd = line
		return 0, nil
	}
}

// repeatOnce runs one repetition of the last command.
func (s *lineScript) repeatOnce() (int, error) {
	s.repeat--
	return s.exec(s.lines[s.lastCmd], s.lastCmd)
}

// typeString presses each character of text through the layout. Characters
// without a layout entry are skipped.
func (s *lineScript) typeString(text string) error {
	for i := 0; i < len(text); i++ {
		code := s.layout.Keycode(text[i])
		if code == 0 {
			pkg.LogDebug(pkg.ComponentScript, "character not in layout", "char", text[i])
			continue
		}
		if err := s.press(uint8(code>>8), uint8(code)); err != nil {
			return err
		}
	}
	return nil
}

// pressCombo presses a line of key names and modifiers together. A single
// character is resolved through the layout.
func (s *lineScript) pressCombo(words []string) error {
	var mods, key uint8
	for _, word := range words {
		upper := strings.ToUpper(word)
		if m, ok := modifierKeys[upper]; ok {
			mods |= m
			continue
		}
		if k, ok := namedKeys[upper]; ok {
			key = k
			continue
		}
		if len(word) == 1 {
			code := s.layout.Keycode(word[0])
			mods |= uint8(code >> 8)
			key = uint8(code)
			continue
		}
		return fmt.Errorf("%w: unknown key %q", pkg.ErrScriptSyntax, word)
	}
	return s.press(mods, key)
}

// press sends a report with the given keys held, then a release report.
func (s *lineScript) press(mods, key uint8) error {
	if s.out == nil {
		return nil
	}
	var r Report
	r.Modifiers = mods
	if key != 0 {
		r.SetKey(key)
	}
	var buf [2 * ReportSize]byte
	r.MarshalTo(buf[:ReportSize])
	r.Clear()
	r.MarshalTo(buf[ReportSize:])
	if _, err := s.out.Write(buf[:]); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ticks converts a delay to whole ticks, rounding up.
func (s *lineScript) ticks(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + s.tick - 1) / s.tick)
}

func parseMillis(arg string) (time.Duration, error) {
	ms, err := strconv.Atoi(arg)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%w: delay %q", pkg.ErrScriptSyntax, arg)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func (s *lineScript) Status() Status {
	st := Status{
		State: s.state,
		Lines: len(s.lines),
	}
	if s.state != StateIdle {
		st.Line = min(s.pc, len(s.lines))
	}
	if s.state == StateScriptError {
		st.ErrorLine = s.errLine
		st.Error = s.errText
	}
	return st
}

func (s *lineScript) SetLayout(path string) error {
	if s.closed {
		return pkg.ErrScriptClosed
	}
	layout, err := LoadLayout(path)
	if err != nil {
		return err
	}
	s.layout = layout
	pkg.LogDebug(pkg.ComponentScript, "layout changed", "layout", LayoutName(path))
	return nil
}

func (s *lineScript) Close() error {
	if s.closed {
		return pkg.ErrScriptClosed
	}
	s.closed = true
	s.state = StateIdle
	pkg.LogDebug(pkg.ComponentScript, "script closed", "path", s.path)

	if s.platform != nil {
		if err := s.platform.SetConfig(nil); err != nil {
			return fmt.Errorf("%w: unbind HID: %v", pkg.ErrUSBConfig, err)
		}
		pkg.LogInfo(pkg.ComponentScript, "HID configuration inactive")
	}
	return nil
}
