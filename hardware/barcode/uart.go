package barcode

import (
	"io"

	"github.com/juju/errors"
	"github.com/temoto/playreg/log2"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Uarter is serial port as seen by Driver.
// Read must not block, (0, nil) means no data.
type Uarter interface {
	io.ReadWriter
	Open(path string, baud int) error
	ResetRead() error
	Drain() error
	Close() error
}

type serialUart struct {
	port serial.Port
}

func NewSerialUart() Uarter { return &serialUart{} }

func (self *serialUart) Open(path string, baud int) error {
	if self.port != nil {
		_ = self.port.Close()
		self.port = nil
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return errors.Annotatef(err, "serial open %s baud=%d", path, baud)
	}
	if err = port.SetReadTimeout(0); err != nil {
		_ = port.Close()
		return errors.Annotate(err, "serial set read timeout")
	}
	self.port = port
	return nil
}

func (self *serialUart) Read(p []byte) (int, error) {
	if self.port == nil {
		return 0, errors.New("serial port closed")
	}
	return self.port.Read(p)
}

func (self *serialUart) Write(p []byte) (int, error) {
	if self.port == nil {
		return 0, errors.New("serial port closed")
	}
	return self.port.Write(p)
}

func (self *serialUart) ResetRead() error {
	if self.port == nil {
		return nil
	}
	return self.port.ResetInputBuffer()
}

func (self *serialUart) Drain() error {
	if self.port == nil {
		return nil
	}
	return self.port.Drain()
}

func (self *serialUart) Close() error {
	if self.port == nil {
		return nil
	}
	err := self.port.Close()
	self.port = nil
	return err
}

// LogPorts prints detected serial ports, helps to find scanner after re-plug.
func LogPorts(log *log2.Log) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		log.Error(errors.Annotate(err, "serial enumerate"))
		return
	}
	if len(ports) == 0 {
		log.Infof("no serial ports found")
		return
	}
	for _, p := range ports {
		if p.IsUSB {
			log.Infof("serial port %s usb=%s:%s serial=%s product=%s", p.Name, p.VID, p.PID, p.SerialNumber, p.Product)
		} else {
			log.Infof("serial port %s", p.Name)
		}
	}
}
