// Package barcode drives serial barcode scanner: configuration commands,
// guard windows around them, control response filter and baud/wiring probe.
package barcode

import (
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/playreg/helpers"
	"github.com/temoto/playreg/helpers/atomic_clock"
	"github.com/temoto/playreg/internal/frame"
	"github.com/temoto/playreg/log2"
)

const (
	DefaultBaud      = 115200
	DefaultGuard     = 120 * time.Millisecond
	DefaultStabilize = 1500 * time.Millisecond
	DefaultMinLength = 6
)

type Config struct {
	Device        string `hcl:"device"`
	DeviceSwapped string `hcl:"device_swapped"`
	Baud          int    `hcl:"baud"`
	Probe         bool   `hcl:"probe"`
	GapMs         int    `hcl:"gap_ms"`
	GuardMs       int    `hcl:"guard_ms"`
	StabilizeMs   int    `hcl:"stabilize_ms"`
	MinLength     int    `hcl:"min_length"`
	LogDebug      bool   `hcl:"log_debug"`
}

type Driver struct {
	Log   *log2.Log
	Clock func() time.Time
	Sleep func(time.Duration)

	config     Config
	uart       Uarter
	reader     *frame.Reader
	prober     *Prober
	guard      time.Duration
	stabilize  time.Duration
	guardUntil atomic_clock.Clock
	reopen     helpers.Backoff
	open       bool
	booted     bool
}

func NewDriver(config Config, uart Uarter, log *log2.Log) *Driver {
	if config.Baud == 0 {
		config.Baud = DefaultBaud
	}
	if config.MinLength == 0 {
		config.MinLength = DefaultMinLength
	}
	self := &Driver{
		Log:       log,
		Clock:     time.Now,
		Sleep:     time.Sleep,
		config:    config,
		uart:      uart,
		reader:    frame.New(helpers.IntMillisecondDefault(config.GapMs, frame.GapBarcode)),
		guard:     helpers.IntMillisecondDefault(config.GuardMs, DefaultGuard),
		stabilize: helpers.IntMillisecondDefault(config.StabilizeMs, DefaultStabilize),
		reopen:    helpers.Backoff{Min: time.Second, Max: 30 * time.Second, K: 2},
	}
	return self
}

func (self *Driver) Name() string { return "barcode" }

// Boot opens the port. Without probe it programs the scanner, blocking
// for len(BootCommands) guard windows, then starts the stabilization window.
func (self *Driver) Boot() error {
	now := self.Clock()
	if self.config.Probe {
		self.prober = NewProber(self.config.DeviceSwapped != "", now)
	}
	self.booted = true
	return self.connect(now)
}

// Poll returns validated codes received since previous call. Never blocks.
func (self *Driver) Poll(now time.Time) []string {
	if !self.booted {
		return nil
	}
	if !self.open {
		if !self.reopen.Ready(now) {
			return nil
		}
		if err := self.connect(now); err != nil {
			return nil
		}
	}

	if !self.guardUntil.IsZero() {
		if self.guardUntil.Until(now) > 0 {
			self.discard()
			return nil
		}
		self.guardUntil.Reset()
		self.discard()
		self.Log.Debugf("ready")
	}

	before := self.reader.Received()
	var codes []string
	for {
		s, ok, err := self.reader.Next(self.uart, now)
		if ok {
			if code, valid := self.check(s); valid {
				codes = append(codes, code)
			}
		}
		if err != nil {
			self.fail(now, err)
			return codes
		}
		if !ok {
			break
		}
	}

	if self.prober != nil && !self.prober.Locked() {
		if self.prober.Settle(now, self.reader.Received() != before) {
			self.Log.Infof("probe rotate to %s", self.prober.Current())
			_ = self.connect(now)
		} else if self.prober.Locked() {
			self.Log.Infof("probe locked %s", self.prober.Current())
		}
	}
	return codes
}

// Guarded reports whether input is currently discarded.
func (self *Driver) Guarded(now time.Time) bool {
	return !self.guardUntil.IsZero() && self.guardUntil.Until(now) > 0
}

func (self *Driver) Ready() bool { return self.open }

// Candidate is current probe guess, zero value when not probing.
func (self *Driver) Candidate() Candidate {
	if self.prober == nil {
		return Candidate{Baud: self.config.Baud}
	}
	return self.prober.Current()
}

func (self *Driver) Close() error {
	self.open = false
	return self.uart.Close()
}

func (self *Driver) check(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if IsControlResponse(s) {
		self.Log.Debugf("control response %q dropped", s)
		return "", false
	}
	if len(s) < self.config.MinLength {
		self.Log.Debugf("short frame %q dropped", s)
		if self.prober != nil {
			self.prober.Short()
		}
		return "", false
	}
	if self.prober != nil {
		self.prober.Valid()
	}
	self.Log.Debugf("frame %q", s)
	return s, true
}

func (self *Driver) connect(now time.Time) error {
	path, baud := self.config.Device, self.config.Baud
	if self.prober != nil {
		c := self.prober.Current()
		baud = c.Baud
		if c.Swapped {
			path = self.config.DeviceSwapped
		}
	}
	self.open = false
	self.reader.Reset()
	if err := self.uart.Open(path, baud); err != nil {
		self.reopen.Failure(now)
		self.Log.Error(errors.Annotatef(err, "barcode open %s retry in %s", path, self.reopen.Remaining(now)))
		if self.prober != nil {
			self.prober.Skip(now)
			self.Log.Infof("probe skip to %s", self.prober.Current())
		}
		return err
	}
	self.open = true
	self.reopen.Reset()
	self.Log.Infof("open %s baud=%d", path, baud)

	if self.prober == nil {
		if err := self.configure(); err != nil {
			self.fail(now, err)
			return err
		}
	}
	return nil
}

// configure sends BootCommands, each inside a guard window,
// then suppresses polling for the stabilization window.
func (self *Driver) configure() error {
	for _, cmd := range BootCommands {
		if err := self.sendCommand(cmd); err != nil {
			return err
		}
	}
	self.guardUntil.Set(self.Clock().Add(self.stabilize))
	self.Log.Debugf("stabilize %s", self.stabilize)
	return nil
}

func (self *Driver) sendCommand(cmd Command) error {
	self.discard()
	if err := helpers.WriteAll(self.uart, cmd.Bytes); err != nil {
		return errors.Annotatef(err, "command %s", cmd.Name)
	}
	if err := self.uart.Drain(); err != nil {
		return errors.Annotatef(err, "command %s drain", cmd.Name)
	}
	self.Sleep(self.guard)
	self.discard()
	self.guardUntil.Set(self.Clock().Add(self.guard))
	self.Log.Debugf("command %s % x", cmd.Name, cmd.Bytes)
	return nil
}

func (self *Driver) discard() {
	if err := self.uart.ResetRead(); err != nil {
		self.Log.Debugf("reset input: %v", err)
	}
	self.reader.Reset()
}

func (self *Driver) fail(now time.Time, err error) {
	self.Log.Error(errors.Annotate(err, "barcode"))
	_ = self.uart.Close()
	self.open = false
	self.reopen.Failure(now)
}
