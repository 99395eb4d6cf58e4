package sound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/temoto/playreg/log2"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
	"periph.io/x/periph/conn/physic"
)

func TestTotal(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 80*time.Millisecond, Total(ToneScan))
	assert.Equal(t, 790*time.Millisecond, Total(TonePayment))
	assert.Equal(t, 430*time.Millisecond, Total(ToneStartup))
	assert.Equal(t, 120*time.Millisecond, Total(ToneShutter))
}

func TestVolumeDuty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, gpio.Duty(0), VolumeDuty(0))
	assert.Equal(t, gpio.DutyHalf, VolumeDuty(255))
	assert.Equal(t, gpio.DutyHalf, VolumeDuty(1000))
	assert.True(t, VolumeDuty(32) > 0 && VolumeDuty(32) < gpio.DutyHalf/4)
}

func TestConfigDuty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, VolumeDuty(DefaultVolume), Config{}.Duty())
	assert.Equal(t, gpio.DutyHalf, Config{Volume: 255}.Duty())
	assert.Equal(t, gpio.Duty(0), Config{Volume: 255, Mute: true}.Duty())
}

func TestPWMMuteKeepsTiming(t *testing.T) {
	t.Parallel()
	pin := &gpiotest.Pin{N: "GPIO18", Num: 18}
	var slept time.Duration
	p := &pwmPlayer{
		log:   log2.NewTest(t, log2.LDebug),
		pin:   pin,
		duty:  Config{Mute: true}.Duty(),
		sleep: func(d time.Duration) { slept += d },
	}
	p.Play(TonePayment)
	assert.Equal(t, Total(TonePayment), slept)
	assert.Equal(t, physic.Frequency(0), pin.F, "pwm never started")
}

func TestPWMPlay(t *testing.T) {
	t.Parallel()
	pin := &gpiotest.Pin{N: "GPIO18", Num: 18}
	var slept time.Duration
	p := &pwmPlayer{
		log:   log2.NewTest(t, log2.LDebug),
		pin:   pin,
		duty:  VolumeDuty(255),
		sleep: func(d time.Duration) { slept += d },
	}
	p.Play(TonePayment)
	assert.Equal(t, Total(TonePayment), slept)
	assert.Equal(t, gpio.Low, pin.Read(), "left silent")
	assert.Equal(t, 2093*physic.Hertz, pin.F, "last tone frequency")
}

func TestMock(t *testing.T) {
	t.Parallel()
	m := NewMock()
	m.Play(ToneScan)
	m.Play(TonePayment)
	assert.Equal(t, [][]ToneStep{ToneScan, TonePayment}, m.Played())
	m.Reset()
	assert.Empty(t, m.Played())
}
