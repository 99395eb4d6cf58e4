package barcode

import (
	"bytes"
	"strconv"
	"sync"

	"github.com/juju/errors"
)

// MockUart is Uarter for tests. Push() simulates scanner output.
type MockUart struct {
	mu      sync.Mutex
	in      bytes.Buffer
	Out     bytes.Buffer
	Opened  []string // "path@baud" per Open call
	OpenErr error
	ReadErr error
	Resets  int
	open    bool

	// OpenFail fails Open only for listed paths.
	OpenFail map[string]error
	// Echo, if set, is pushed as input after each Write, like scanner acks.
	Echo     []byte
}

func NewMockUart() *MockUart { return &MockUart{} }

func (self *MockUart) Push(b []byte) {
	self.mu.Lock()
	self.in.Write(b)
	self.mu.Unlock()
}

func (self *MockUart) PushString(s string) { self.Push([]byte(s)) }

func (self *MockUart) Open(path string, baud int) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.Opened = append(self.Opened, path+"@"+strconv.Itoa(baud))
	if self.OpenErr != nil {
		return self.OpenErr
	}
	if err := self.OpenFail[path]; err != nil {
		return err
	}
	self.open = true
	return nil
}

func (self *MockUart) Read(p []byte) (int, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if !self.open {
		return 0, errors.New("mock uart closed")
	}
	if self.ReadErr != nil {
		return 0, self.ReadErr
	}
	if self.in.Len() == 0 {
		return 0, nil
	}
	return self.in.Read(p)
}

func (self *MockUart) Write(p []byte) (int, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	n, _ := self.Out.Write(p)
	self.in.Write(self.Echo)
	return n, nil
}

func (self *MockUart) ResetRead() error {
	self.mu.Lock()
	self.in.Reset()
	self.Resets++
	self.mu.Unlock()
	return nil
}

func (self *MockUart) Drain() error { return nil }

func (self *MockUart) Close() error {
	self.mu.Lock()
	self.open = false
	self.mu.Unlock()
	return nil
}

func (self *MockUart) IsOpen() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.open
}
