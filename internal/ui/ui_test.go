package ui_test

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/playreg/hardware/sound"
	"github.com/temoto/playreg/internal/camera"
	"github.com/temoto/playreg/internal/register"
	state_new "github.com/temoto/playreg/internal/state/new"
	"github.com/temoto/playreg/internal/ui"
)

type fakeMode struct {
	name    string
	enters  int
	touches []image.Point
	updates int
	lines   []string
}

func (self *fakeMode) Name() string         { return self.name }
func (self *fakeMode) Enter()               { self.enters++ }
func (self *fakeMode) OnTouch(x, y int)     { self.touches = append(self.touches, image.Pt(x, y)) }
func (self *fakeMode) Update(now time.Time) { self.updates++ }
func (self *fakeMode) Status() string       { return "fake" }
func (self *fakeMode) OnConsoleLine(line string) bool {
	if !strings.HasPrefix(line, "X:") {
		return false
	}
	self.lines = append(self.lines, line)
	return true
}

func newFake(t testing.TB, conf string) (*ui.Dispatcher, *fakeMode, *fakeMode, *state_new.Mocks) {
	ctx, _ := state_new.NewTestContext(t, conf)
	reg, cam := &fakeMode{name: "register"}, &fakeMode{name: "camera"}
	d := ui.NewDispatcher(ctx, map[ui.ModeID]ui.Mode{ui.ModeRegister: reg, ui.ModeCamera: cam})
	return d, reg, cam, state_new.GetMocks(ctx)
}

func TestParseModeID(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input  string
		expect ui.ModeID
		err    bool
	}{
		{"register", ui.ModeRegister, false},
		{"camera", ui.ModeCamera, false},
		{"", "", true},
		{"Camera", "", true},
	}
	for _, c := range cases {
		c := c
		t.Run(c.input, func(t *testing.T) {
			id, err := ui.ParseModeID(c.input)
			if c.err {
				assert.True(t, errors.IsNotValid(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expect, id)
		})
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()
	d, reg, cam, mocks := newFake(t, "")
	assert.Nil(t, d.Mode())
	d.Step(time.Time{}) // no mode, no panic

	require.NoError(t, d.Start())
	assert.Equal(t, ui.ModeRegister, d.Current())
	assert.Equal(t, 1, reg.enters)
	assert.Equal(t, 0, cam.enters)
	assert.Equal(t, [][]sound.ToneStep{sound.ToneStartup}, mocks.Speaker.Played())

	err := d.Select(ui.ModeID("radio"))
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, ui.ModeRegister, d.Current())
}

func TestTouchEdge(t *testing.T) {
	t.Parallel()
	d, reg, _, mocks := newFake(t, "")
	require.NoError(t, d.Start())
	now := time.Time{}

	mocks.Touch.Set(10, 20, true)
	d.Step(now)
	d.Step(now)
	d.Step(now)
	assert.Equal(t, []image.Point{{10, 20}}, reg.touches, "hold is one press")

	mocks.Touch.Set(10, 20, false)
	d.Step(now)
	mocks.Touch.Set(30, 40, true)
	d.Step(now)
	assert.Equal(t, []image.Point{{10, 20}, {30, 40}}, reg.touches)
	assert.Equal(t, 5, reg.updates)
}

func TestTouchError(t *testing.T) {
	t.Parallel()
	d, reg, _, mocks := newFake(t, "")
	require.NoError(t, d.Start())
	mocks.Touch.Set(1, 1, true)
	mocks.Touch.Err = errors.New("read: no such device")
	d.Step(time.Time{})
	d.Step(time.Time{})
	assert.Empty(t, reg.touches)
	assert.Equal(t, 2, reg.updates)
}

func TestConsole(t *testing.T) {
	t.Parallel()
	d, reg, cam, mocks := newFake(t, "")
	require.NoError(t, d.Start())

	mocks.Console.PushString("X:1\r\nhello\nX:2\nMODE:bogus\n")
	d.Step(time.Time{})
	assert.Equal(t, []string{"X:1", "X:2"}, reg.lines)
	assert.Equal(t, ui.ModeRegister, d.Current())

	mocks.Console.PushString("MODE:camera\nX:3\n")
	d.Step(time.Time{})
	assert.Equal(t, ui.ModeCamera, d.Current())
	assert.Equal(t, 1, cam.enters)
	assert.Equal(t, []string{"X:3"}, cam.lines)
	assert.Equal(t, 1, cam.updates)
}

func TestRun(t *testing.T) {
	t.Parallel()
	ctx, g := state_new.NewTestContext(t, `ui { mode = "camera" status_sec = 1 }`)
	mocks := state_new.GetMocks(ctx)
	reg, cam := &fakeMode{name: "register"}, &fakeMode{name: "camera"}
	d := ui.NewDispatcher(ctx, map[ui.ModeID]ui.Mode{ui.ModeRegister: reg, ui.ModeCamera: cam})
	start := mocks.Clock.Time()
	steps := 0
	d.XXX_testHook = func(time.Time) {
		steps++
		if steps == 5 {
			g.Stop()
		}
	}
	require.NoError(t, d.Run(ctx))
	g.Alive.Wait()
	assert.Equal(t, 5, steps)
	assert.Equal(t, 1, cam.enters)
	assert.Equal(t, 5, cam.updates)
	assert.Equal(t, 0, reg.enters)
	assert.Equal(t, 5*ui.LoopInterval, mocks.Clock.Time().Sub(start))
}

func TestRunStopped(t *testing.T) {
	t.Parallel()
	ctx, g := state_new.NewTestContext(t, "")
	reg := &fakeMode{name: "register"}
	d := ui.NewDispatcher(ctx, map[ui.ModeID]ui.Mode{ui.ModeRegister: reg})
	g.Stop()
	require.NoError(t, d.Run(ctx))
	assert.Equal(t, 0, reg.enters)
	assert.Nil(t, d.Mode())
}

// Real modes through console, as on the bench with a serial cable.
func TestModesIntegration(t *testing.T) {
	t.Parallel()
	ctx, _ := state_new.NewTestContext(t, "")
	mocks := state_new.GetMocks(ctx)
	r := register.New(ctx)
	d := ui.NewDispatcher(ctx, map[ui.ModeID]ui.Mode{
		ui.ModeRegister: r,
		ui.ModeCamera:   camera.New(ctx),
	})
	require.NoError(t, d.Start())

	mocks.Console.PushString("BC:4912345678904\nBC:123456\n")
	d.Step(mocks.Clock.Time())
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 430, r.Total())

	mocks.Console.PushString("MODE:camera\n")
	d.Step(mocks.Clock.Time())
	assert.Equal(t, ui.ModeCamera, d.Current())
	assert.Equal(t, 1, mocks.Camera.Starts)
	assert.GreaterOrEqual(t, mocks.Camera.Captures, 1)

	mocks.Console.PushString("MODE:register\n")
	d.Step(mocks.Clock.Time())
	assert.Equal(t, register.StateNormal, r.State())
	assert.Equal(t, 2, r.Count(), "cart survives mode switch")
	assert.Contains(t, mocks.Display.Texts(), register.Caption)
}
