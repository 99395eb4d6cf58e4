package state

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/playreg/helpers"
	"github.com/temoto/playreg/internal/catalog"
	"github.com/temoto/playreg/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Catalog      *catalog.Resolver
	Config       *Config
	Hardware     hardware // hardware.go
	Log          *log2.Log

	// Clock and Sleep are replaced in tests.
	Clock func() time.Time
	Sleep func(time.Duration)

	errorCount uint32

	_copy_guard sync.Mutex //nolint:unused
}

const ContextKey = "run/state-global"

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// Init returns only configuration errors.
// Hardware failures are logged and the device degrades to no-op.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg
	if g.Clock == nil {
		g.Clock = time.Now
	}
	if g.Sleep == nil {
		g.Sleep = time.Sleep
	}

	g.Log.Infof("build version=%s", g.BuildVersion)
	if cfg.includeSeen == nil {
		// built in code, not by ReadConfig
		if err := cfg.applyDefaults(); err != nil {
			return errors.Annotate(err, "config")
		}
	}
	g.Catalog = catalog.New(cfg.Catalog.Names)
	g.Log.Debugf("config: catalog names=%d mode=%s cart_cap=%d", g.Catalog.Len(), cfg.UI.Mode, cfg.Register.CartCap)

	const initTasks = 5
	wg := sync.WaitGroup{}
	wg.Add(initTasks)
	errch := make(chan error, initTasks)
	go helpers.WrapErrChan(&wg, errch, g.initDisplay)
	go helpers.WrapErrChan(&wg, errch, g.initBarcode)
	go helpers.WrapErrChan(&wg, errch, g.initRfid)
	go helpers.WrapErrChan(&wg, errch, g.initSpeaker)
	go helpers.WrapErrChan(&wg, errch, g.initTouch)
	wg.Wait()
	close(errch)

	if err := helpers.FoldErrChan(errch); err != nil {
		g.Error(err, "hardware init, continue degraded")
	}
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Fatal(err)
	}
}

// CountError is installed as root log error hook, see state_new.NewContext.
func (g *Global) CountError(error) { atomic.AddUint32(&g.errorCount, 1) }

// ErrorCount is number of errors logged since start.
func (g *Global) ErrorCount() uint32 { return atomic.LoadUint32(&g.errorCount) }

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(err)
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}

// subLog is tagged clone, debug messages only with log_debug=true.
func (g *Global) subLog(tag string, debug bool) *log2.Log {
	l := g.Log.Tagged(tag)
	if !debug && l.Enabled(log2.LDebug) {
		l.SetLevel(log2.LInfo)
	}
	return l
}
