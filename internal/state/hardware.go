package state

import (
	"image"
	"io"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/temoto/playreg/hardware/barcode"
	"github.com/temoto/playreg/hardware/camera"
	"github.com/temoto/playreg/hardware/display"
	"github.com/temoto/playreg/hardware/input"
	"github.com/temoto/playreg/hardware/mfrc522"
	"github.com/temoto/playreg/hardware/rfid"
	"github.com/temoto/playreg/hardware/sound"
	"github.com/temoto/playreg/helpers"
)

// Fields with exported names may be set before Init, state-new testing mode.
type hardware struct {
	Barcode struct {
		once
		Uart barcode.Uarter
		d    *barcode.Driver
	}
	Camera struct {
		once
		Dev camera.Camera
	}
	Console struct {
		once
		Dev input.Console
	}
	Display struct {
		once
		Dev *display.Display
	}
	Rfid struct {
		once
		Reader rfid.Reader
		d      *rfid.Driver
		bus    io.Closer
	}
	Speaker struct {
		once
		Player sound.Player
	}
	Touch struct {
		once
		Dev input.Toucher
	}
}

// Display never returns nil, headless or failed framebuffer draws into memory.
func (g *Global) Display() (*display.Display, error) {
	x := &g.Hardware.Display // short alias
	_ = x.do(func() error {
		if x.Dev != nil {
			return nil
		}
		cfg := &g.Config.Hardware.Display
		size := image.Pt(cfg.Width, cfg.Height)
		if cfg.Framebuffer == "" {
			g.Log.Infof("display: framebuffer not set, drawing to memory")
			x.Dev = display.NewMock(size)
			return nil
		}
		d, err := display.NewFb(cfg.Framebuffer, cfg.BigEndian, cfg.Font)
		if err != nil {
			x.Dev = display.NewMock(size)
			return errors.Annotate(err, "display")
		}
		x.Dev = d
		if cfg.Font == "" {
			g.Log.Infof("display: font not set, kana will not render")
		}
		return nil
	})
	return x.Dev, x.err
}

func (g *Global) Barcode() (*barcode.Driver, error) {
	x := &g.Hardware.Barcode // short alias
	_ = x.do(func() error {
		cfg := g.Config.Hardware.Barcode
		log := g.subLog("barcode", cfg.LogDebug)
		if x.Uart == nil {
			barcode.LogPorts(log)
			x.Uart = barcode.NewSerialUart()
		}
		x.d = barcode.NewDriver(cfg, x.Uart, log)
		x.d.Clock = g.Clock
		x.d.Sleep = g.Sleep
		if cfg.Device == "" {
			return errors.NotFoundf("config: hardware.barcode.device")
		}
		return errors.Annotate(x.d.Boot(), "barcode")
	})
	return x.d, x.err
}

// Rfid never returns nil driver, offline one polls nothing.
func (g *Global) Rfid() (*rfid.Driver, error) {
	x := &g.Hardware.Rfid // short alias
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Rfid
		log := g.subLog("rfid", cfg.LogDebug)
		if x.Reader == nil && !cfg.Disable {
			if cfg.ResetChip != "" {
				if err := mfrc522.OpenHardReset(cfg.ResetChip, uint32(cfg.ResetLine)); err != nil {
					log.Error(err)
				}
			}
			dev, bus, err := mfrc522.Open(cfg.Bus, uint16(cfg.Addr), log)
			if err != nil {
				x.d = rfid.NewDriver(nil, log)
				return errors.Annotate(err, "rfid")
			}
			x.Reader = dev
			x.bus = bus
		}
		x.d = rfid.NewDriver(x.Reader, log)
		if cfg.Disable {
			return nil
		}
		return errors.Annotate(x.d.Boot(), "rfid")
	})
	return x.d, x.err
}

func (g *Global) Speaker() (sound.Player, error) {
	x := &g.Hardware.Speaker // short alias
	_ = x.do(func() error {
		if x.Player != nil {
			return nil
		}
		cfg := g.Config.Hardware.Speaker
		if cfg.Pin == "" {
			x.Player = sound.Silent{}
			return nil
		}
		p, err := sound.NewPWM(cfg, g.Log.Tagged("speaker"))
		if err != nil {
			x.Player = sound.Silent{}
			return errors.Annotate(err, "speaker")
		}
		x.Player = p
		return nil
	})
	return x.Player, x.err
}

// Touch without configured device is never pressed.
func (g *Global) Touch() (input.Toucher, error) {
	x := &g.Hardware.Touch // short alias
	_ = x.do(func() error {
		if x.Dev != nil {
			return nil
		}
		cfg := g.Config.Hardware.Touch
		if cfg.Device == "" {
			x.Dev = input.NewMockTouch()
			return nil
		}
		size := image.Pt(g.Config.Hardware.Display.Width, g.Config.Hardware.Display.Height)
		if d, _ := g.Display(); d != nil {
			size = d.Size()
		}
		t, err := input.NewTouch(cfg, size.X, size.Y, g.Log.Tagged("touch"))
		if err != nil {
			x.Dev = input.NewMockTouch()
			return errors.Annotate(err, "touch")
		}
		x.Dev = t
		return nil
	})
	return x.Dev, x.err
}

// Camera device is opened lazily by camera mode.
func (g *Global) Camera() camera.Camera {
	x := &g.Hardware.Camera // short alias
	_ = x.do(func() error {
		if x.Dev == nil {
			d := camera.NewDevice(g.Config.Hardware.Camera, g.Log.Tagged("cam"))
			d.Sleep = g.Sleep
			x.Dev = d
		}
		return nil
	})
	return x.Dev
}

// Console may return nil when disabled or failed.
func (g *Global) Console() (input.Console, error) {
	x := &g.Hardware.Console // short alias
	_ = x.do(func() error {
		if x.Dev != nil {
			return nil
		}
		cfg := g.Config.Hardware.Debug
		if cfg.Disable {
			return nil
		}
		c, err := input.NewConsole(cfg, g.Log)
		if err != nil {
			return errors.Annotate(err, "debug console")
		}
		x.Dev = c
		return nil
	})
	return x.Dev, x.err
}

// CloseHardware releases devices opened so far.
func (g *Global) CloseHardware() error {
	errs := make([]error, 0, 4)
	h := &g.Hardware
	if h.Barcode.d != nil {
		errs = append(errs, h.Barcode.d.Close())
	}
	if h.Rfid.bus != nil {
		errs = append(errs, h.Rfid.bus.Close())
	}
	if h.Camera.Dev != nil {
		errs = append(errs, h.Camera.Dev.Stop())
	}
	if h.Touch.Dev != nil {
		errs = append(errs, h.Touch.Dev.Close())
	}
	if h.Console.Dev != nil {
		errs = append(errs, h.Console.Dev.Close())
	}
	if h.Display.Dev != nil {
		errs = append(errs, h.Display.Dev.Close())
	}
	return helpers.FoldErrors(errs)
}

func (g *Global) initDisplay() error {
	d, err := g.Display()
	if d != nil {
		if cerr := d.Clear(); cerr != nil && err == nil {
			err = errors.Annotate(cerr, "display clear")
		}
	}
	return err
}

func (g *Global) initBarcode() error { _, err := g.Barcode(); return err }
func (g *Global) initRfid() error    { _, err := g.Rfid(); return err }
func (g *Global) initSpeaker() error { _, err := g.Speaker(); return err }
func (g *Global) initTouch() error   { _, err := g.Touch(); return err }

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
