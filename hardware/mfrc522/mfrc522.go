// Package mfrc522 talks to NXP MFRC522 contactless reader over I2C.
// Only what is needed to read ISO 14443A card UID: REQA, anticollision/select, HLTA.
package mfrc522

import (
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/playreg/crc"
	"github.com/temoto/playreg/log2"
	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

const DefaultAddr uint16 = 0x28

const DefaultTimeout = 36 * time.Millisecond

var (
	ErrTimeout   = errors.New("mfrc522: no answer from card")
	ErrCollision = errors.New("mfrc522: collision")
)

type Dev struct {
	Log     *log2.Log
	Timeout time.Duration
	Sleep   func(time.Duration)

	c   conn.Conn
	uid []byte
	sak byte
}

func New(c conn.Conn, log *log2.Log) *Dev {
	return &Dev{
		Log:     log,
		Timeout: DefaultTimeout,
		Sleep:   time.Sleep,
		c:       c,
	}
}

// Open initializes periph host drivers and returns device on named I2C bus.
// Empty busName selects first available bus.
func Open(busName string, addr uint16, log *log2.Log) (*Dev, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, errors.Annotate(err, "periph/init")
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, errors.Annotatef(err, "i2c open bus=%q", busName)
	}
	if addr == 0 {
		addr = DefaultAddr
	}
	return New(&i2c.Dev{Bus: bus, Addr: addr}, log), bus, nil
}

func (self *Dev) String() string { return fmt.Sprintf("mfrc522(%s)", self.c) }

// Version reads VersionReg, 0x91/0x92 for genuine chips, 0x88 for clones.
// Doubles as bus probe.
func (self *Dev) Version() (byte, error) {
	v, err := self.readReg(VersionReg)
	if err != nil {
		return 0, errors.Annotate(err, "read VersionReg")
	}
	if v == 0x00 || v == 0xff {
		return v, errors.NotFoundf("mfrc522 VersionReg=0x%02x", v)
	}
	return v, nil
}

// Init does soft reset, configures timer for transceive timeout and enables antenna.
func (self *Dev) Init() error {
	if err := self.writeReg(CommandReg, PCD_SoftReset); err != nil {
		return errors.Annotate(err, "soft reset")
	}
	self.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		v, err := self.readReg(CommandReg)
		if err != nil {
			return errors.Annotate(err, "soft reset")
		}
		if v&bitPowerDown == 0 {
			break
		}
		self.Sleep(10 * time.Millisecond)
	}

	steps := []struct{ reg, value byte }{
		{TxModeReg, 0x00},
		{RxModeReg, 0x00},
		{ModWidthReg, 0x26},
		// timer: f=40kHz, auto start at end of transmission, reload 1000 = 25ms
		{TModeReg, 0x80},
		{TPrescalerReg, 0xa9},
		{TReloadRegH, 0x03},
		{TReloadRegL, 0xe8},
		{TxASKReg, 0x40}, // 100% ASK
		{ModeReg, 0x3d},  // CRC preset 0x6363
	}
	for _, s := range steps {
		if err := self.writeReg(s.reg, s.value); err != nil {
			return errors.Annotatef(err, "init reg=%02x", s.reg)
		}
	}
	return self.antennaOn()
}

// IsNewCardPresent sends REQA, true if some idle card answered ATQA.
// Halted cards do not answer REQA.
func (self *Dev) IsNewCardPresent() bool {
	for _, s := range [][2]byte{{TxModeReg, 0}, {RxModeReg, 0}, {ModWidthReg, 0x26}} {
		if err := self.writeReg(s[0], s[1]); err != nil {
			self.Log.Debugf("REQA prepare: %v", err)
			return false
		}
	}
	if err := self.clearBits(CollReg, bitValuesColl); err != nil {
		return false
	}
	atqa, bits, err := self.transceive([]byte{PICC_REQA}, 7)
	if err != nil && err != ErrCollision {
		return false
	}
	return len(atqa) == 2 && bits == 0
}

// ReadCardSerial runs anticollision and select over cascade levels.
// On success UID() returns 4, 7 or 10 bytes.
func (self *Dev) ReadCardSerial() bool {
	uid, sak, err := self.selectCard()
	if err != nil {
		self.Log.Debugf("select: %v", err)
		return false
	}
	self.uid, self.sak = uid, sak
	return true
}

func (self *Dev) UID() []byte { return self.uid }
func (self *Dev) SAK() byte   { return self.sak }

// HaltA puts selected card to HALT state. Card must not answer.
func (self *Dev) HaltA() error {
	_, _, err := self.transceive(crc.AppendCRC_A([]byte{PICC_HLTA, 0x00}), 0)
	switch err {
	case ErrTimeout:
		return nil
	case nil:
		return errors.New("HLTA: card answered")
	default:
		return errors.Annotate(err, "HLTA")
	}
}

// StopCrypto1 leaves authenticated state, required before next card communication.
func (self *Dev) StopCrypto1() error {
	return errors.Annotate(self.clearBits(Status2Reg, bitMFCrypto1), "stop crypto1")
}

func (self *Dev) selectCard() ([]byte, byte, error) {
	uid := make([]byte, 0, 10)
	for level, sel := range []byte{PICC_SEL_CL1, PICC_SEL_CL2, PICC_SEL_CL3} {
		if err := self.clearBits(CollReg, bitValuesColl); err != nil {
			return nil, 0, err
		}
		back, _, err := self.transceive([]byte{sel, 0x20}, 0)
		if err != nil {
			return nil, 0, errors.Annotatef(err, "anticollision CL%d", level+1)
		}
		if len(back) != 5 {
			return nil, 0, errors.NotValidf("anticollision CL%d length=%d", level+1, len(back))
		}
		if back[0]^back[1]^back[2]^back[3] != back[4] {
			return nil, 0, errors.NotValidf("anticollision CL%d BCC", level+1)
		}

		frame := crc.AppendCRC_A([]byte{sel, 0x70, back[0], back[1], back[2], back[3], back[4]})
		sak, _, err := self.transceive(frame, 0)
		if err != nil {
			return nil, 0, errors.Annotatef(err, "select CL%d", level+1)
		}
		if len(sak) != 3 || !crc.CheckCRC_A(sak) {
			return nil, 0, errors.NotValidf("select CL%d SAK % x", level+1, sak)
		}

		if sak[0]&bitCascade != 0 {
			// back[0] is cascade tag, UID continues on next level
			uid = append(uid, back[1:4]...)
			continue
		}
		uid = append(uid, back[:4]...)
		return uid, sak[0], nil
	}
	return nil, 0, errors.NotSupportedf("UID longer than 3 cascade levels")
}

// transceive sends data to card, returns answer and number of valid bits in last byte.
func (self *Dev) transceive(send []byte, txLastBits byte) ([]byte, byte, error) {
	for _, s := range [][2]byte{
		{CommandReg, PCD_Idle},
		{ComIrqReg, 0x7f},
		{FIFOLevelReg, bitFlushFIFO},
	} {
		if err := self.writeReg(s[0], s[1]); err != nil {
			return nil, 0, err
		}
	}
	if err := self.writeRegs(FIFODataReg, send); err != nil {
		return nil, 0, err
	}
	if err := self.writeReg(BitFramingReg, txLastBits); err != nil {
		return nil, 0, err
	}
	if err := self.writeReg(CommandReg, PCD_Transceive); err != nil {
		return nil, 0, err
	}
	if err := self.setBits(BitFramingReg, bitStartSend); err != nil {
		return nil, 0, err
	}

	deadline := time.Now().Add(self.Timeout)
	for {
		irq, err := self.readReg(ComIrqReg)
		if err != nil {
			return nil, 0, err
		}
		if irq&(bitRxIRq|bitIdleIRq) != 0 {
			break
		}
		if irq&bitTimerIRq != 0 || time.Now().After(deadline) {
			return nil, 0, ErrTimeout
		}
	}

	errReg, err := self.readReg(ErrorReg)
	if err != nil {
		return nil, 0, err
	}
	if errReg&errFatalMask != 0 {
		return nil, 0, errors.Errorf("mfrc522 ErrorReg=0x%02x", errReg)
	}
	n, err := self.readReg(FIFOLevelReg)
	if err != nil {
		return nil, 0, err
	}
	back := make([]byte, n)
	if n > 0 {
		if err = self.c.Tx([]byte{FIFODataReg}, back); err != nil {
			return nil, 0, err
		}
	}
	control, err := self.readReg(ControlReg)
	if err != nil {
		return nil, 0, err
	}
	if errReg&errCollision != 0 {
		return back, control & 0x07, ErrCollision
	}
	return back, control & 0x07, nil
}

func (self *Dev) antennaOn() error {
	v, err := self.readReg(TxControlReg)
	if err != nil {
		return errors.Annotate(err, "antenna")
	}
	if v&bitAntenna != bitAntenna {
		return self.writeReg(TxControlReg, v|bitAntenna)
	}
	return nil
}

func (self *Dev) readReg(reg byte) (byte, error) {
	var r [1]byte
	err := self.c.Tx([]byte{reg}, r[:])
	return r[0], err
}

func (self *Dev) writeReg(reg, value byte) error {
	return self.c.Tx([]byte{reg, value}, nil)
}

func (self *Dev) writeRegs(reg byte, values []byte) error {
	w := make([]byte, 0, 1+len(values))
	w = append(w, reg)
	w = append(w, values...)
	return self.c.Tx(w, nil)
}

func (self *Dev) setBits(reg, mask byte) error {
	v, err := self.readReg(reg)
	if err != nil {
		return err
	}
	return self.writeReg(reg, v|mask)
}

func (self *Dev) clearBits(reg, mask byte) error {
	v, err := self.readReg(reg)
	if err != nil {
		return err
	}
	return self.writeReg(reg, v&^mask)
}
