// Sorry, workaround to import cycles.
package state_new

import (
	"context"
	"image"
	"os"
	"testing"
	"time"

	"github.com/temoto/alive/v2"
	"github.com/temoto/playreg/hardware/barcode"
	"github.com/temoto/playreg/hardware/camera"
	"github.com/temoto/playreg/hardware/display"
	"github.com/temoto/playreg/hardware/input"
	"github.com/temoto/playreg/hardware/rfid"
	"github.com/temoto/playreg/hardware/sound"
	"github.com/temoto/playreg/helpers/atomic_clock"
	"github.com/temoto/playreg/internal/state"
	"github.com/temoto/playreg/log2"
)

const MockContextKey = "run/state-mocks"

// Mocks are devices installed by NewTestContext.
type Mocks struct {
	Clock   *atomic_clock.Clock
	Uart    *barcode.MockUart
	Rfid    *rfid.MockReader
	Display *display.Display
	Speaker *sound.Mock
	Touch   *input.MockTouch
	Console *input.MockConsole
	Camera  *camera.Mock
}

func GetMocks(ctx context.Context) *Mocks {
	return ctx.Value(MockContextKey).(*Mocks)
}

func NewContext(log *log2.Log) (context.Context, *state.Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}

	g := &state.Global{
		Alive: alive.NewAlive(),
		Log:   log,
	}
	// before any Tagged() copy
	log.SetErrorFunc(g.CountError)
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	return ctx, g
}

// NewTestContext builds Global with mock hardware. Clock starts at fixed
// time and moves only by Mocks.Clock.Add().
func NewTestContext(t testing.TB, confString string) (context.Context, *state.Global) {
	fs := state.NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("playreg_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log)

	cfg := state.MustReadConfig(log, fs, "test-inline")
	if cfg.Hardware.Barcode.Device == "" {
		cfg.Hardware.Barcode.Device = "/dev/mock-barcode"
	}
	size := image.Pt(cfg.Hardware.Display.Width, cfg.Hardware.Display.Height)
	mocks := &Mocks{
		Clock:   atomic_clock.New(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC).UnixNano()),
		Uart:    barcode.NewMockUart(),
		Rfid:    rfid.NewMockReader(),
		Display: display.NewMock(size),
		Speaker: sound.NewMock(),
		Touch:   input.NewMockTouch(),
		Console: input.NewMockConsole(),
		Camera:  camera.NewMock(size.X, size.Y),
	}
	g.Clock = mocks.Clock.Time
	g.Sleep = mocks.Clock.Sleep
	g.Hardware.Barcode.Uart = mocks.Uart
	g.Hardware.Rfid.Reader = mocks.Rfid
	g.Hardware.Display.Dev = mocks.Display
	g.Hardware.Speaker.Player = mocks.Speaker
	g.Hardware.Touch.Dev = mocks.Touch
	g.Hardware.Console.Dev = mocks.Console
	g.Hardware.Camera.Dev = mocks.Camera
	g.MustInit(ctx, cfg)

	ctx = context.WithValue(ctx, MockContextKey, mocks)
	return ctx, g
}
