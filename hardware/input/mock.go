package input

import (
	"bytes"
	"sync"
)

type MockTouch struct {
	mu    sync.Mutex
	state TouchState
	Err   error
}

func NewMockTouch() *MockTouch { return &MockTouch{} }

func (self *MockTouch) Set(x, y int, down bool) {
	self.mu.Lock()
	self.state = TouchState{X: x, Y: y, Down: down}
	self.mu.Unlock()
}

func (self *MockTouch) Sample() (TouchState, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.state, self.Err
}

func (self *MockTouch) Close() error { return nil }

type MockConsole struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewMockConsole() *MockConsole { return &MockConsole{} }

func (self *MockConsole) PushString(s string) {
	self.mu.Lock()
	self.buf.WriteString(s)
	self.mu.Unlock()
}

func (self *MockConsole) Read(p []byte) (int, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.buf.Len() == 0 {
		return 0, nil
	}
	return self.buf.Read(p)
}

func (self *MockConsole) Close() error   { return nil }
func (self *MockConsole) String() string { return "mock" }
