// Package sound plays short tone sequences on PWM buzzer.
package sound

import (
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/playreg/log2"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

const DefaultVolume = 32

type ToneStep struct {
	FrequencyHz int
	Duration    time.Duration
	Wait        time.Duration // silence after tone
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var (
	ToneScan = []ToneStep{
		{1760, ms(80), 0},
	}
	TonePayment = []ToneStep{
		{1175, ms(120), ms(150)},
		{1568, ms(140), ms(160)},
		{2093, ms(220), 0},
	}
	ToneStartup = []ToneStep{
		{1319, ms(90), ms(40)},
		{1760, ms(110), ms(40)},
		{2093, ms(150), 0},
	}
	ToneShutter = []ToneStep{
		{2093, ms(40), ms(20)},
		{1568, ms(60), 0},
	}
)

// Total is playback duration of sequence including waits.
func Total(tones []ToneStep) time.Duration {
	var d time.Duration
	for _, t := range tones {
		d += t.Duration + t.Wait
	}
	return d
}

// Player blocks for Total(tones).
type Player interface {
	Play(tones []ToneStep)
}

type Config struct {
	Pin    string `hcl:"pin"`
	Volume int    `hcl:"volume"`
	Mute   bool   `hcl:"mute"`
}

// Duty from volume 1..255, 0 means DefaultVolume.
// Mute gives zero duty, Play still sleeps through every step.
func (c Config) Duty() gpio.Duty {
	if c.Mute {
		return 0
	}
	if c.Volume == 0 {
		return VolumeDuty(DefaultVolume)
	}
	return VolumeDuty(c.Volume)
}

type pwmPlayer struct {
	log   *log2.Log
	pin   gpio.PinIO
	duty  gpio.Duty
	sleep func(time.Duration)
}

// NewPWM opens buzzer pin by periph name, e.g. "GPIO18".
// Volume scales duty cycle up to 50%, see Config.Duty.
func NewPWM(config Config, log *log2.Log) (Player, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph/init")
	}
	pin := gpioreg.ByName(config.Pin)
	if pin == nil {
		return nil, errors.NotFoundf("speaker pin=%s", config.Pin)
	}
	return &pwmPlayer{
		log:   log,
		pin:   pin,
		duty:  config.Duty(),
		sleep: time.Sleep,
	}, nil
}

func VolumeDuty(volume int) gpio.Duty {
	switch {
	case volume <= 0:
		return 0
	case volume > 255:
		volume = 255
	}
	return gpio.Duty(int64(gpio.DutyHalf) * int64(volume) / 255)
}

func (self *pwmPlayer) Play(tones []ToneStep) {
	for _, t := range tones {
		if self.duty != 0 && t.FrequencyHz > 0 {
			if err := self.pin.PWM(self.duty, physic.Frequency(t.FrequencyHz)*physic.Hertz); err != nil {
				self.log.Debugf("speaker pwm: %v", err)
			}
		}
		self.sleep(t.Duration)
		if err := self.pin.Halt(); err != nil {
			self.log.Debugf("speaker halt: %v", err)
		}
		if err := self.pin.Out(gpio.Low); err != nil {
			self.log.Debugf("speaker low: %v", err)
		}
		self.sleep(t.Wait)
	}
}

// Silent keeps no state, used when speaker is not configured.
type Silent struct{}

func (Silent) Play([]ToneStep) {}

// Mock records sequences without sleeping.
type Mock struct {
	mu     sync.Mutex
	played [][]ToneStep
}

func NewMock() *Mock { return &Mock{} }

func (self *Mock) Play(tones []ToneStep) {
	self.mu.Lock()
	self.played = append(self.played, tones)
	self.mu.Unlock()
}

func (self *Mock) Played() [][]ToneStep {
	self.mu.Lock()
	defer self.mu.Unlock()
	out := make([][]ToneStep, len(self.played))
	copy(out, self.played)
	return out
}

func (self *Mock) Reset() {
	self.mu.Lock()
	self.played = nil
	self.mu.Unlock()
}
