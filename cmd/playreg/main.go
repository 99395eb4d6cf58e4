// Toy register: barcode scanner, RFID card payment, touch screen, camera mode.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/playreg/internal/camera"
	"github.com/temoto/playreg/internal/register"
	"github.com/temoto/playreg/internal/state"
	state_new "github.com/temoto/playreg/internal/state/new"
	"github.com/temoto/playreg/internal/ui"
	"github.com/temoto/playreg/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X main.BuildVersion

var log = log2.NewStderr(log2.LDebug)

func main() {
	flagConfig := flag.String("config", "playreg.hcl", "")
	flag.Parse()

	if sdnotify("start") || !isatty.IsTerminal(os.Stderr.Fd()) {
		// systemd journal or pipe adds timestamps
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	log.SetLevel(log2.ParseLevel(config.LogLevel, log2.LInfo))

	ctx, g := state_new.NewContext(log)
	g.BuildVersion = BuildVersion
	g.MustInit(ctx, config)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		g.Log.Infof("signal=%v stopping", sig)
		g.Stop()
	}()

	d := ui.NewDispatcher(ctx, map[ui.ModeID]ui.Mode{
		ui.ModeRegister: register.New(ctx),
		ui.ModeCamera:   camera.New(ctx),
	})
	if err := d.Start(); err != nil {
		g.Fatal(err)
	}

	sdnotify(daemon.SdNotifyReady)
	go watchdog(g)
	g.Log.Debugf("init complete")

	if err := d.Run(ctx); err != nil {
		g.Error(errors.Annotate(err, "ui"))
	}
	g.Alive.Wait()
	if err := g.CloseHardware(); err != nil {
		g.Error(err, "close hardware")
	}
	g.Log.Infof("bye")
}

// watchdog pings systemd at half of WatchdogSec while the process is alive.
func watchdog(g *state.Global) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		g.Error(err, "systemd watchdog")
		return
	}
	if interval == 0 {
		return
	}
	tmr := time.NewTicker(interval / 2)
	defer tmr.Stop()
	for {
		select {
		case <-tmr.C:
			sdnotify(daemon.SdNotifyWatchdog)
		case <-g.Alive.StopChan():
			return
		}
	}
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
