// Package camera is camera toy mode: live view, tap takes still photo,
// next tap returns to live view.
package camera

import (
	"context"
	"image"
	"time"

	camera_dev "github.com/temoto/playreg/hardware/camera"
	"github.com/temoto/playreg/hardware/display"
	"github.com/temoto/playreg/hardware/sound"
	"github.com/temoto/playreg/internal/state"
	"github.com/temoto/playreg/log2"
)

//go:generate stringer -type=View -trimprefix=View
type View uint8

const (
	ViewLive View = iota
	ViewStill
)

const (
	StillThickness  = 5
	StillLineOffset = 8
	Unavailable1    = "カメラを"
	Unavailable2    = "つかえません"
	Unavailable3    = "タップでさいしこう"
	unavailable1Y   = 82
	unavailable2Y   = 118
	unavailable3Y   = 168
)

type Mode struct {
	Log     *log2.Log
	cam     camera_dev.Camera
	display *display.Display
	speaker sound.Player
	view    View
	frames  uint32
}

func New(ctx context.Context) *Mode {
	g := state.GetGlobal(ctx)
	self := &Mode{
		Log: g.Log.Tagged("cam"),
		cam: g.Camera(),
	}
	self.display, _ = g.Display()
	self.speaker, _ = g.Speaker()
	return self
}

func (self *Mode) Name() string { return "camera" }
func (self *Mode) View() View   { return self.view }
func (self *Mode) Ready() bool  { return self.cam.Ready() }

func (self *Mode) Enter() {
	self.view = ViewLive
	if err := self.cam.Start(); err != nil {
		self.Log.Error(err)
		self.renderUnavailable()
		return
	}
	self.updateLive()
}

func (self *Mode) OnTouch(x, y int) {
	if !self.cam.Ready() {
		self.Enter()
		return
	}
	if self.view == ViewLive {
		self.speaker.Play(sound.ToneShutter)
		self.view = ViewStill
		self.drawStillFrame()
		self.flush()
		return
	}
	self.view = ViewLive
	self.updateLive()
}

func (self *Mode) Update(time.Time) {
	if self.view != ViewLive {
		return
	}
	self.updateLive()
}

func (self *Mode) updateLive() {
	if !self.cam.Ready() {
		return
	}
	frame, err := self.cam.Capture()
	if err != nil {
		self.Log.Errorf("capture failed: %v", err)
		self.renderUnavailable()
		return
	}
	self.renderFrame(frame)
	self.frames++
}

func (self *Mode) renderFrame(frame *image.RGBA) {
	d := self.display
	size := d.Size()
	fs := frame.Bounds().Size()
	if fs != size {
		d.Fill(display.Black)
	}
	pt := image.Pt(maxInt((size.X-fs.X)/2, 0), maxInt((size.Y-fs.Y)/2, 0))
	d.Blit(frame, pt)
	self.flush()
}

func (self *Mode) renderUnavailable() {
	d := self.display
	d.Fill(display.Black)
	d.TextCentered(unavailable1Y, Unavailable1, display.TextNormal, display.White)
	d.TextCentered(unavailable2Y, Unavailable2, display.TextNormal, display.White)
	d.TextCentered(unavailable3Y, Unavailable3, display.TextNormal, display.White)
	self.flush()
}

// drawStillFrame draws white border over the last live frame, plus two grey outlines inside.
func (self *Mode) drawStillFrame() {
	d := self.display
	size := d.Size()
	w, h, t := size.X, size.Y, StillThickness
	innerH := maxInt(h-t*2, 1)
	d.FillRect(image.Rect(0, 0, w, t), display.White)
	d.FillRect(image.Rect(0, h-t, w, h), display.White)
	d.FillRect(image.Rect(0, t, t, t+innerH), display.White)
	d.FillRect(image.Rect(w-t, t, w, t+innerH), display.White)

	inner := image.Rect(t, t, t+maxInt(w-t*2, 1), t+innerH)
	d.DrawRect(inner, 1, display.LightGrey)
	off := minInt(StillLineOffset, t+4)
	line := image.Rect(off, off, off+maxInt(w-off*2, 1), off+maxInt(h-off*2, 1))
	d.DrawRect(line, 1, display.DarkGrey)
}

func (self *Mode) flush() {
	if err := self.display.Flush(); err != nil {
		self.Log.Debugf("display flush: %v", err)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
