// Package rfid polls contactless reader for newly presented cards.
package rfid

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/playreg/internal/types"
	"github.com/temoto/playreg/log2"
)

// Reader is card level API, implemented by mfrc522.Dev.
type Reader interface {
	Version() (byte, error)
	Init() error
	IsNewCardPresent() bool
	ReadCardSerial() bool
	UID() []byte
	HaltA() error
	StopCrypto1() error
}

type Driver struct {
	Log    *log2.Log
	reader Reader
	ready  bool
	polls  uint32
	cards  uint32
}

func NewDriver(reader Reader, log *log2.Log) *Driver {
	return &Driver{Log: log, reader: reader}
}

func (self *Driver) Name() string { return "rfid" }

// Boot probes reader once. Failure leaves driver permanently not ready,
// PollCard is no-op then.
func (self *Driver) Boot() error {
	if self.reader == nil {
		return types.DeviceOfflineError{Device: self.Name()}
	}
	v, err := self.reader.Version()
	if err != nil {
		return types.DeviceOfflineError{Device: self.Name(), Cause: errors.Annotate(err, "probe")}
	}
	if err = self.reader.Init(); err != nil {
		return types.DeviceOfflineError{Device: self.Name(), Cause: errors.Annotate(err, "init")}
	}
	self.Log.Infof("MFRC522 version 0x%02X", v)
	self.ready = true
	return nil
}

func (self *Driver) Ready() bool { return self.ready }

// PollCard returns UID of newly presented card.
// Card is halted and crypto stopped after read, so same card may be presented again.
func (self *Driver) PollCard() (string, bool) {
	if !self.ready {
		return "", false
	}
	self.polls++
	if !self.reader.IsNewCardPresent() {
		return "", false
	}
	if !self.reader.ReadCardSerial() {
		return "", false
	}
	uid := FormatUID(self.reader.UID())
	if err := self.reader.HaltA(); err != nil {
		self.Log.Debugf("halt: %v", err)
	}
	if err := self.reader.StopCrypto1(); err != nil {
		self.Log.Debugf("stop crypto: %v", err)
	}
	self.cards++
	self.Log.Debugf("card uid=%s", uid)
	return uid, true
}

func (self *Driver) String() string {
	return fmt.Sprintf("rfid ready=%t polls=%d cards=%d", self.ready, self.polls, self.cards)
}

// FormatUID renders every byte as two uppercase hex digits, no separators.
func FormatUID(uid []byte) string { return fmt.Sprintf("%X", uid) }
