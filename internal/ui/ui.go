// Package ui is the single cooperative loop: touch edge, console lines,
// then current mode Update.
package ui

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/playreg/hardware/input"
	"github.com/temoto/playreg/hardware/sound"
	"github.com/temoto/playreg/helpers"
	"github.com/temoto/playreg/internal/frame"
	"github.com/temoto/playreg/internal/state"
	"github.com/temoto/playreg/log2"
)

const ConsolePrefixMode = "MODE:"

const LoopInterval = 10 * time.Millisecond

type Dispatcher struct {
	Log *log2.Log

	g           *state.Global
	modes       map[ModeID]Mode
	current     ModeID
	touch       input.Toucher
	touchErr    bool
	prevDown    bool
	console     input.Console
	consoleRd   *frame.Reader
	speaker     sound.Player
	statusEvery time.Duration
	lastStatus  time.Time

	XXX_testHook func(now time.Time)
}

func NewDispatcher(ctx context.Context, modes map[ModeID]Mode) *Dispatcher {
	g := state.GetGlobal(ctx)
	self := &Dispatcher{
		Log:         g.Log.Tagged("ui"),
		g:           g,
		modes:       modes,
		consoleRd:   frame.New(frame.GapConsole),
		statusEvery: helpers.IntSecondDefault(g.Config.UI.StatusSec, 0),
	}
	self.touch, _ = g.Touch()
	self.speaker, _ = g.Speaker()
	if c, err := g.Console(); err != nil {
		g.Error(err, "debug console")
	} else {
		self.console = c
	}
	return self
}

func (self *Dispatcher) Current() ModeID { return self.current }

// Mode returns current mode, nil before Select.
func (self *Dispatcher) Mode() Mode { return self.modes[self.current] }

// Select enters mode id and plays startup tone.
func (self *Dispatcher) Select(id ModeID) error {
	m, ok := self.modes[id]
	if !ok || m == nil {
		return errors.NotFoundf("mode=%s", id)
	}
	self.Log.Infof("mode %s", m.Name())
	self.current = id
	self.prevDown = false
	self.speaker.Play(sound.ToneStartup)
	m.Enter()
	return nil
}

// Start selects mode from config ui.mode.
func (self *Dispatcher) Start() error {
	id, err := ParseModeID(self.g.Config.UI.Mode)
	if err != nil {
		return errors.Annotate(err, "ui.mode")
	}
	return self.Select(id)
}

func (self *Dispatcher) Run(ctx context.Context) error {
	if !self.g.Alive.Add(1) {
		return nil
	}
	defer self.g.Alive.Done()
	if self.Mode() == nil {
		if err := self.Start(); err != nil {
			return err
		}
	}
	for self.g.Alive.IsRunning() {
		now := self.g.Clock()
		self.Step(now)
		if self.XXX_testHook != nil {
			self.XXX_testHook(now)
		}
		self.g.Sleep(LoopInterval)
	}
	self.g.Log.Debugf("ui loop end")
	return nil
}

// Step is one loop iteration.
func (self *Dispatcher) Step(now time.Time) {
	m := self.Mode()
	if m == nil {
		return
	}
	if x, y, ok := self.pressed(); ok {
		m.OnTouch(x, y)
	}
	self.pollConsole(now)
	// console may switch mode
	self.Mode().Update(now)
	self.logStatus(now)
}

// pressed reports touch edge: down now and up on previous sample.
func (self *Dispatcher) pressed() (int, int, bool) {
	ts, err := self.touch.Sample()
	if err != nil {
		if !self.touchErr {
			self.Log.Errorf("touch: %v", err)
			self.touchErr = true
		}
		self.prevDown = false
		return 0, 0, false
	}
	self.touchErr = false
	edge := ts.Down && !self.prevDown
	self.prevDown = ts.Down
	return ts.X, ts.Y, edge
}

func (self *Dispatcher) pollConsole(now time.Time) {
	if self.console == nil {
		return
	}
	var src io.Reader = self.console
	for {
		line, ok, err := self.consoleRd.Next(src, now)
		if err != nil {
			self.Log.Debugf("console read: %v", err)
		}
		if !ok {
			return
		}
		self.OnConsoleLine(line)
		// pending bytes are already buffered
		src = nil
	}
}

// OnConsoleLine handles MODE: itself, other lines go to current mode.
func (self *Dispatcher) OnConsoleLine(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ConsolePrefixMode) {
		id, err := ParseModeID(strings.TrimPrefix(line, ConsolePrefixMode))
		if err == nil {
			err = self.Select(id)
		}
		if err != nil {
			self.Log.Debugf("console %q: %v", line, err)
			return false
		}
		return true
	}
	if h, ok := self.Mode().(ConsoleHandler); ok && h.OnConsoleLine(line) {
		return true
	}
	self.Log.Debugf("console ignored %q", line)
	return false
}

func (self *Dispatcher) logStatus(now time.Time) {
	if self.statusEvery <= 0 || now.Sub(self.lastStatus) < self.statusEvery {
		return
	}
	self.lastStatus = now
	if s, ok := self.Mode().(Statuser); ok {
		self.Log.Infof("status mode=%s errors=%d %s", self.current, self.g.ErrorCount(), s.Status())
	} else {
		self.Log.Infof("status mode=%s errors=%d", self.current, self.g.ErrorCount())
	}
}
