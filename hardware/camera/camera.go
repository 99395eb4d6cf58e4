// Package camera reads raw RGB565 frames from capture device.
package camera

import (
	"image"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/playreg/log2"
)

const (
	DefaultWidth        = 320
	DefaultHeight       = 240
	DefaultFrameTimeout = time.Second
)

type Profile struct {
	Name    string
	Buffers int
}

var (
	ProfileNormal  = Profile{Name: "normal", Buffers: 2}
	ProfileCompact = Profile{Name: "compact", Buffers: 1}
)

type Camera interface {
	// Start is no-op when already started.
	Start() error
	Ready() bool
	Profile() Profile
	Capture() (*image.RGBA, error)
	Stop() error
}

type Config struct {
	Device         string `hcl:"device"`
	Width          int    `hcl:"width"`
	Height         int    `hcl:"height"`
	BigEndian      bool   `hcl:"big_endian"`
	FrameTimeoutMs int    `hcl:"frame_timeout_ms"`
}

type deadliner interface {
	SetReadDeadline(time.Time) error
}

type Device struct {
	Log   *log2.Log
	Sleep func(time.Duration)
	// Open is replaced in tests.
	Open func() (io.ReadCloser, error)

	config  Config
	timeout time.Duration
	f       io.ReadCloser
	profile Profile
	bufs    [][]byte
	next    int
	ready   bool
}

func NewDevice(config Config, log *log2.Log) *Device {
	if config.Width == 0 {
		config.Width = DefaultWidth
	}
	if config.Height == 0 {
		config.Height = DefaultHeight
	}
	timeout := DefaultFrameTimeout
	if config.FrameTimeoutMs != 0 {
		timeout = time.Duration(config.FrameTimeoutMs) * time.Millisecond
	}
	self := &Device{
		Log:     log,
		Sleep:   time.Sleep,
		config:  config,
		timeout: timeout,
	}
	self.Open = func() (io.ReadCloser, error) { return os.Open(config.Device) }
	return self
}

func (self *Device) FrameSize() int { return self.config.Width * self.config.Height * 2 }

func (self *Device) Ready() bool      { return self.ready }
func (self *Device) Profile() Profile { return self.profile }

// Start tries normal profile, then compact one.
// Profile is accepted when first frame arrives in time.
func (self *Device) Start() error {
	if self.ready {
		return nil
	}
	self.close()
	err := self.startProfile(ProfileNormal)
	if err == nil {
		self.Log.Infof("init ok profile=%s", ProfileNormal.Name)
		return nil
	}
	self.Log.Errorf("init failed profile=%s err=%v", ProfileNormal.Name, err)
	self.close()
	self.Sleep(20 * time.Millisecond)

	if err = self.startProfile(ProfileCompact); err != nil {
		self.Log.Errorf("init failed profile=%s err=%v", ProfileCompact.Name, err)
		self.close()
		return errors.Annotate(err, "camera start")
	}
	self.Log.Infof("init ok profile=%s", ProfileCompact.Name)
	return nil
}

func (self *Device) startProfile(p Profile) error {
	f, err := self.Open()
	if err != nil {
		return errors.Annotatef(err, "open %s", self.config.Device)
	}
	self.f = f
	self.profile = p
	self.bufs = make([][]byte, p.Buffers)
	for i := range self.bufs {
		self.bufs[i] = make([]byte, self.FrameSize())
	}
	self.next = 0
	if _, err = self.readFrame(); err != nil {
		return err
	}
	self.ready = true
	return nil
}

func (self *Device) readFrame() ([]byte, error) {
	buf := self.bufs[self.next]
	self.next = (self.next + 1) % len(self.bufs)
	if d, ok := self.f.(deadliner); ok {
		_ = d.SetReadDeadline(time.Now().Add(self.timeout))
	}
	if _, err := io.ReadFull(self.f, buf); err != nil {
		return nil, errors.Annotate(err, "frame read")
	}
	return buf, nil
}

// Capture reads next frame. Failure marks device not ready.
func (self *Device) Capture() (*image.RGBA, error) {
	if !self.ready {
		return nil, errors.New("camera not started")
	}
	buf, err := self.readFrame()
	if err != nil {
		self.ready = false
		self.close()
		return nil, err
	}
	return Decode565(buf, self.config.Width, self.config.Height, self.config.BigEndian), nil
}

func (self *Device) Stop() error {
	self.ready = false
	return self.close()
}

func (self *Device) close() error {
	if self.f == nil {
		return nil
	}
	err := self.f.Close()
	self.f = nil
	return err
}

// Decode565 expands packed RGB565 pixels.
func Decode565(buf []byte, width, height int, bigEndian bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 2
			if i+1 >= len(buf) {
				return img
			}
			var v uint16
			if bigEndian {
				v = uint16(buf[i])<<8 | uint16(buf[i+1])
			} else {
				v = uint16(buf[i+1])<<8 | uint16(buf[i])
			}
			r := uint8(v>>11) & 0x1f
			g := uint8(v>>5) & 0x3f
			b := uint8(v) & 0x1f
			img.SetRGBA(x, y, color.RGBA{
				R: r<<3 | r>>2,
				G: g<<2 | g>>4,
				B: b<<3 | b>>2,
				A: 0xff,
			})
		}
	}
	return img
}
