package camera

import (
	"image"

	"github.com/juju/errors"
)

type Mock struct {
	StartErr   error
	CaptureErr error
	Frame      *image.RGBA
	Starts     int
	Captures   int
	ready      bool
}

func NewMock(width, height int) *Mock {
	return &Mock{Frame: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (self *Mock) Start() error {
	if self.ready {
		return nil
	}
	self.Starts++
	if self.StartErr != nil {
		return self.StartErr
	}
	self.ready = true
	return nil
}

func (self *Mock) Ready() bool      { return self.ready }
func (self *Mock) Profile() Profile { return ProfileNormal }

func (self *Mock) Capture() (*image.RGBA, error) {
	if !self.ready {
		return nil, errors.New("camera not started")
	}
	self.Captures++
	if self.CaptureErr != nil {
		self.ready = false
		return nil, self.CaptureErr
	}
	return self.Frame, nil
}

func (self *Mock) Stop() error {
	self.ready = false
	return nil
}
