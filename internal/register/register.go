// Package register is toy cash register mode: barcode scans fill the cart,
// RFID card tap pays, thank you screen returns to cart after timeout.
package register

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/temoto/playreg/hardware/barcode"
	"github.com/temoto/playreg/hardware/display"
	"github.com/temoto/playreg/hardware/rfid"
	"github.com/temoto/playreg/hardware/sound"
	"github.com/temoto/playreg/helpers"
	"github.com/temoto/playreg/internal/catalog"
	"github.com/temoto/playreg/internal/state"
	"github.com/temoto/playreg/log2"
)

const (
	MinInputLength   = 2
	MinBarcodeLength = 6

	ConsolePrefixBarcode = "BC:"
	ConsolePrefixRfid    = "RFID:"
)

type Register struct {
	Log   *log2.Log
	Clock func() time.Time

	catalog  *catalog.Resolver
	display  *display.Display
	speaker  sound.Player
	barcode  *barcode.Driver
	rfid     *rfid.Driver
	thankYou time.Duration
	qr       bool
	newID    func() uuid.UUID

	cart        *Cart
	state       State
	thankYouAt  time.Time
	lastReceipt string
	scans       uint32
	payments    uint32
}

func New(ctx context.Context) *Register {
	g := state.GetGlobal(ctx)
	self := &Register{
		Log:      g.Log.Tagged("register"),
		Clock:    g.Clock,
		catalog:  g.Catalog,
		thankYou: helpers.IntMillisecondDefault(g.Config.Register.ThankYouMs, state.DefaultThankYouMs*time.Millisecond),
		qr:       g.Config.Register.ReceiptQR,
		newID:    uuid.New,
		cart:     NewCart(g.Config.Register.CartCap),
	}
	// accessors never return nil, errors were already logged by Init
	self.display, _ = g.Display()
	self.speaker, _ = g.Speaker()
	self.barcode, _ = g.Barcode()
	self.rfid, _ = g.Rfid()
	return self
}

func (self *Register) Name() string { return "register" }

func (self *Register) Enter() {
	self.state = StateNormal
	self.renderNormal()
}

func (self *Register) OnTouch(x, y int) {
	if self.state != StateNormal {
		return
	}
	if pointIn(x, y, ClearHitRect(self.display.Size())) {
		self.OnClear()
	}
}

func (self *Register) Update(now time.Time) {
	if self.barcode != nil {
		for _, code := range self.barcode.Poll(now) {
			self.OnBarcodeFrame(code)
		}
	}
	if self.rfid != nil {
		if uid, ok := self.rfid.PollCard(); ok {
			self.pay(uid, now)
		}
	}
	self.Tick(now)
}

// OnConsoleLine accepts "BC:<code>" and "RFID:<uid>".
func (self *Register) OnConsoleLine(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, ConsolePrefixBarcode):
		self.OnBarcodeFrame(line[len(ConsolePrefixBarcode):])
		return true
	case strings.HasPrefix(line, ConsolePrefixRfid):
		self.OnRfidFrame(line[len(ConsolePrefixRfid):])
		return true
	}
	return false
}

func (self *Register) OnBarcodeFrame(raw string) {
	if self.state != StateNormal {
		return
	}
	if barcode.IsControlResponse(raw) {
		self.Log.Debugf("control response=%q dropped", raw)
		return
	}
	code, ok := normalize(raw)
	if !ok || len(code) < MinBarcodeLength {
		self.Log.Debugf("short code=%q dropped", code)
		return
	}
	item := self.catalog.Resolve(code)
	self.Log.Debugf("code=%s item=%s", code, item.String())
	self.cart.Append(item)
	self.scans++
	self.speaker.Play(sound.ToneScan)
	self.renderNormal()
}

// OnRfidFrame pays with UID from outside the loop, dwell starts at Clock().
func (self *Register) OnRfidFrame(raw string) { self.pay(raw, self.Clock()) }

func (self *Register) pay(raw string, now time.Time) {
	if self.state != StateNormal {
		return
	}
	uid, ok := normalize(raw)
	if !ok {
		return
	}
	self.lastReceipt = fmt.Sprintf("playreg:%s:%d:%d", self.newID().String(), self.cart.Count(), self.cart.Total())
	self.Log.Infof("payment uid=%s items=%d total=%d", uid, self.cart.Count(), self.cart.Total())
	self.cart.Clear()
	self.state = StateThankYou
	self.thankYouAt = now
	self.payments++
	self.renderThankYou()
	self.speaker.Play(sound.TonePayment)
}

// Tick returns to Normal once thank you screen was shown long enough.
func (self *Register) Tick(now time.Time) {
	if self.state != StateThankYou {
		return
	}
	if helpers.MonotonicMillis(self.thankYouAt, now) < int64(self.thankYou/time.Millisecond) {
		return
	}
	self.state = StateNormal
	self.renderNormal()
}

func (self *Register) OnClear() {
	if self.state != StateNormal {
		return
	}
	self.speaker.Play(sound.ToneScan)
	self.cart.Clear()
	self.renderNormal()
}

func (self *Register) State() State { return self.state }
func (self *Register) Cart() *Cart  { return self.cart }
func (self *Register) Total() int   { return self.cart.Total() }
func (self *Register) Count() int   { return self.cart.Count() }

// LastReceipt is QR payload of the latest payment.
func (self *Register) LastReceipt() string { return self.lastReceipt }

func (self *Register) Status() string {
	bc, rf := "off", "rfid off"
	if self.barcode != nil && self.barcode.Ready() {
		bc = self.barcode.Candidate().String()
	}
	if self.rfid != nil {
		rf = self.rfid.String()
	}
	return fmt.Sprintf("state=%s items=%d total=%d scans=%d payments=%d barcode=%s %s",
		self.state.String(), self.cart.Count(), self.cart.Total(), self.scans, self.payments, bc, rf)
}

func normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) >= MinInputLength
}
