package rfid

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/temoto/playreg/internal/types"
	"github.com/temoto/playreg/log2"
)

type mockReader struct{ mock.Mock }

func (m *mockReader) Version() (byte, error) {
	returns := m.Called()
	return returns.Get(0).(byte), returns.Error(1)
}
func (m *mockReader) Init() error            { return m.Called().Error(0) }
func (m *mockReader) IsNewCardPresent() bool { return m.Called().Bool(0) }
func (m *mockReader) ReadCardSerial() bool   { return m.Called().Bool(0) }
func (m *mockReader) UID() []byte            { return m.Called().Get(0).([]byte) }
func (m *mockReader) HaltA() error           { return m.Called().Error(0) }
func (m *mockReader) StopCrypto1() error     { return m.Called().Error(0) }

func TestFormatUID(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input  []byte
		expect string
	}{
		{[]byte{0x04, 0xa1, 0x0b, 0xff}, "04A10BFF"},
		{[]byte{0x00}, "00"},
		{[]byte{0x04, 0x5e, 0x21, 0x9a, 0x3c, 0x6b, 0x80}, "045E219A3C6B80"},
		{nil, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, FormatUID(c.input))
	}
}

func TestPollCard(t *testing.T) {
	t.Parallel()
	m := &mockReader{}
	m.On("Version").Return(byte(0x92), nil).Once()
	m.On("Init").Return(nil).Once()
	d := NewDriver(m, log2.NewTest(t, log2.LDebug))
	require.NoError(t, d.Boot())
	require.True(t, d.Ready())

	m.On("IsNewCardPresent").Return(true).Once()
	m.On("ReadCardSerial").Return(true).Once()
	m.On("UID").Return([]byte{0xde, 0xad, 0xbe, 0xef}).Once()
	m.On("HaltA").Return(nil).Once()
	m.On("StopCrypto1").Return(nil).Once()
	uid, ok := d.PollCard()
	assert.True(t, ok)
	assert.Equal(t, "DEADBEEF", uid)
	m.AssertExpectations(t)

	m.On("IsNewCardPresent").Return(false).Once()
	_, ok = d.PollCard()
	assert.False(t, ok)
	m.AssertNumberOfCalls(t, "ReadCardSerial", 1)
}

func TestPollCardReadFail(t *testing.T) {
	t.Parallel()
	m := &mockReader{}
	m.On("Version").Return(byte(0x88), nil)
	m.On("Init").Return(nil)
	m.On("IsNewCardPresent").Return(true)
	m.On("ReadCardSerial").Return(false)
	d := NewDriver(m, log2.NewTest(t, log2.LDebug))
	require.NoError(t, d.Boot())
	_, ok := d.PollCard()
	assert.False(t, ok)
	m.AssertNotCalled(t, "HaltA")
}

func TestHaltErrorStillReturnsUID(t *testing.T) {
	t.Parallel()
	m := &mockReader{}
	m.On("Version").Return(byte(0x92), nil)
	m.On("Init").Return(nil)
	m.On("IsNewCardPresent").Return(true)
	m.On("ReadCardSerial").Return(true)
	m.On("UID").Return([]byte{0x01, 0x02})
	m.On("HaltA").Return(errors.New("card answered"))
	m.On("StopCrypto1").Return(nil)
	d := NewDriver(m, log2.NewTest(t, log2.LDebug))
	require.NoError(t, d.Boot())
	uid, ok := d.PollCard()
	assert.True(t, ok)
	assert.Equal(t, "0102", uid)
	m.AssertCalled(t, "StopCrypto1")
}

func TestNotReady(t *testing.T) {
	t.Parallel()
	m := &mockReader{}
	m.On("Version").Return(byte(0), errors.New("i2c: no ack")).Once()
	d := NewDriver(m, log2.NewTest(t, log2.LDebug))
	err := d.Boot()
	require.Error(t, err)
	assert.True(t, types.IsDeviceOffline(err))
	assert.True(t, types.IsDeviceOffline(errors.Annotate(err, "rfid")))
	assert.Contains(t, err.Error(), "i2c: no ack")
	assert.False(t, d.Ready())
	for i := 0; i < 5; i++ {
		_, ok := d.PollCard()
		assert.False(t, ok)
	}
	m.AssertNumberOfCalls(t, "Version", 1)
	m.AssertNotCalled(t, "IsNewCardPresent")

	d = NewDriver(nil, log2.NewTest(t, log2.LDebug))
	assert.Error(t, d.Boot())
	_, ok := d.PollCard()
	assert.False(t, ok)
}

func TestMockReaderQueue(t *testing.T) {
	t.Parallel()
	m := NewMockReader()
	d := NewDriver(m, log2.NewTest(t, log2.LDebug))
	require.NoError(t, d.Boot())
	m.Present([]byte{0x04, 0xa1})
	m.Present([]byte{0xde, 0xad, 0xbe, 0xef})

	uid, ok := d.PollCard()
	assert.True(t, ok)
	assert.Equal(t, "04A1", uid)
	uid, ok = d.PollCard()
	assert.True(t, ok)
	assert.Equal(t, "DEADBEEF", uid)
	_, ok = d.PollCard()
	assert.False(t, ok)
	assert.Equal(t, 2, m.Halts)
}
