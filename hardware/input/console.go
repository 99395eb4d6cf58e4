package input

import (
	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/playreg/log2"
	"go.bug.st/serial"
	"golang.org/x/sys/unix"
)

const DefaultConsoleBaud = 115200

type ConsoleConfig struct {
	Disable bool   `hcl:"disable"`
	Device  string `hcl:"device"`
	Baud    int    `hcl:"baud"`
}

type stdinConsole struct{ fdReader }

// NewStdinConsole switches fd 0 to non-blocking mode.
func NewStdinConsole(log *log2.Log) (Console, error) {
	if err := unix.SetNonblock(unix.Stdin, true); err != nil {
		return nil, errors.Annotate(err, "stdin set nonblock")
	}
	log.Debugf("console stdin tty=%t", isatty.IsTerminal(uintptr(unix.Stdin)))
	return stdinConsole{fdReader{unix.Stdin}}, nil
}

func (stdinConsole) String() string { return "stdin" }
func (stdinConsole) Close() error {
	return unix.SetNonblock(unix.Stdin, false)
}

type serialConsole struct {
	path string
	port serial.Port
}

func NewSerialConsole(config ConsoleConfig) (Console, error) {
	baud := config.Baud
	if baud == 0 {
		baud = DefaultConsoleBaud
	}
	port, err := serial.Open(config.Device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "console open %s", config.Device)
	}
	if err = port.SetReadTimeout(0); err != nil {
		_ = port.Close()
		return nil, errors.Annotate(err, "console set read timeout")
	}
	return &serialConsole{path: config.Device, port: port}, nil
}

// NewConsole picks serial device when configured, stdin otherwise.
func NewConsole(config ConsoleConfig, log *log2.Log) (Console, error) {
	if config.Device != "" {
		return NewSerialConsole(config)
	}
	return NewStdinConsole(log)
}

func (self *serialConsole) String() string             { return self.path }
func (self *serialConsole) Read(p []byte) (int, error) { return self.port.Read(p) }
func (self *serialConsole) Close() error               { return self.port.Close() }
