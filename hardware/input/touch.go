package input

import (
	"bytes"
	"io"

	"github.com/juju/errors"
	"github.com/temoto/inputevent-go"
	"github.com/temoto/playreg/log2"
	"golang.org/x/sys/unix"
)

// linux/input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0x00
	btnTouch  = 0x14a

	absX            = 0x00
	absY            = 0x01
	absMtPositionX  = 0x35
	absMtPositionY  = 0x36
	absMtTrackingID = 0x39
)

type TouchConfig struct {
	Device  string `hcl:"device"`
	MinX    int    `hcl:"min_x"`
	MaxX    int    `hcl:"max_x"`
	MinY    int    `hcl:"min_y"`
	MaxY    int    `hcl:"max_y"`
	SwapXY  bool   `hcl:"swap_xy"`
	InvertX bool   `hcl:"invert_x"`
	InvertY bool   `hcl:"invert_y"`
}

// Touch accumulates evdev events and commits them on SYN_REPORT.
type Touch struct {
	Log    *log2.Log
	config TouchConfig
	width  int
	height int
	r      io.Reader
	closer func() error
	buf    [64 * inputevent.EventSizeof]byte

	pending TouchState
	state   TouchState
}

func NewTouch(config TouchConfig, width, height int, log *log2.Log) (*Touch, error) {
	fd, err := unix.Open(config.Device, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Annotatef(err, "touch open %s", config.Device)
	}
	self := NewTouchReader(config, width, height, fdReader{fd}, log)
	self.closer = func() error { return unix.Close(fd) }
	return self, nil
}

// NewTouchReader reads raw input_event records from r.
func NewTouchReader(config TouchConfig, width, height int, r io.Reader, log *log2.Log) *Touch {
	return &Touch{
		Log:    log,
		config: config,
		width:  width,
		height: height,
		r:      r,
	}
}

func (self *Touch) Close() error {
	if self.closer == nil {
		return nil
	}
	err := self.closer()
	self.closer = nil
	return err
}

func (self *Touch) Sample() (TouchState, error) {
	for {
		n, err := self.r.Read(self.buf[:])
		for off := 0; off+inputevent.EventSizeof <= n; off += inputevent.EventSizeof {
			ev, perr := inputevent.ReadOne(bytes.NewReader(self.buf[off : off+inputevent.EventSizeof]))
			if perr != nil {
				self.Log.Debugf("touch parse: %v", perr)
				continue
			}
			self.apply(ev)
		}
		if err == io.EOF {
			err = nil
		}
		if err != nil {
			return self.state, errors.Annotate(err, "touch read")
		}
		if n < len(self.buf) {
			return self.state, nil
		}
	}
}

func (self *Touch) apply(ev inputevent.InputEvent) {
	switch ev.Type {
	case evAbs:
		switch ev.Code {
		case absX, absMtPositionX:
			self.pending.X = int(ev.Value)
		case absY, absMtPositionY:
			self.pending.Y = int(ev.Value)
		case absMtTrackingID:
			self.pending.Down = ev.Value >= 0
		}
	case evKey:
		if ev.Code == btnTouch {
			self.pending.Down = ev.Value != 0
		}
	case evSyn:
		if ev.Code == synReport {
			self.state = self.scale(self.pending)
		}
	}
}

func (self *Touch) scale(raw TouchState) TouchState {
	x, y := raw.X, raw.Y
	if self.config.SwapXY {
		x, y = y, x
	}
	x = scaleAxis(x, self.config.MinX, self.config.MaxX, self.width, self.config.InvertX)
	y = scaleAxis(y, self.config.MinY, self.config.MaxY, self.height, self.config.InvertY)
	return TouchState{X: x, Y: y, Down: raw.Down}
}

// scaleAxis maps [min,max] onto [0,size). Unconfigured range passes value through.
func scaleAxis(v, min, max, size int, invert bool) int {
	if max <= min || size <= 0 {
		return v
	}
	if v < min {
		v = min
	} else if v > max {
		v = max
	}
	out := (v - min) * (size - 1) / (max - min)
	if invert {
		out = size - 1 - out
	}
	return out
}
