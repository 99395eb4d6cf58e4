package rfid

import "sync"

// MockReader presents queued cards one per IsNewCardPresent call.
type MockReader struct {
	mu         sync.Mutex
	VersionErr error
	cards      [][]byte
	uid        []byte
	Halts      int
}

func NewMockReader() *MockReader { return &MockReader{} }

func (self *MockReader) Present(uid []byte) {
	self.mu.Lock()
	self.cards = append(self.cards, uid)
	self.mu.Unlock()
}

func (self *MockReader) Version() (byte, error) { return 0x92, self.VersionErr }
func (self *MockReader) Init() error            { return nil }

func (self *MockReader) IsNewCardPresent() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	if len(self.cards) == 0 {
		return false
	}
	self.uid, self.cards = self.cards[0], self.cards[1:]
	return true
}

func (self *MockReader) ReadCardSerial() bool { return self.uid != nil }
func (self *MockReader) UID() []byte          { return self.uid }

func (self *MockReader) HaltA() error {
	self.mu.Lock()
	self.Halts++
	self.uid = nil
	self.mu.Unlock()
	return nil
}

func (self *MockReader) StopCrypto1() error { return nil }
