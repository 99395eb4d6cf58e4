package ui

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/playreg/internal/state"
)

// Mode is one toy screen. All methods are called from the loop goroutine.
type Mode interface {
	Name() string
	Enter()
	OnTouch(x, y int)
	Update(now time.Time)
}

// ConsoleHandler is optional for Mode. Returns false for unknown lines.
type ConsoleHandler interface {
	OnConsoleLine(line string) bool
}

// Statuser is optional for Mode, used by periodic status log.
type Statuser interface {
	Status() string
}

type ModeID string

const (
	ModeRegister ModeID = state.ModeRegister
	ModeCamera   ModeID = state.ModeCamera
)

func ParseModeID(s string) (ModeID, error) {
	switch id := ModeID(s); id {
	case ModeRegister, ModeCamera:
		return id, nil
	}
	return "", errors.NotValidf("mode=%q valid: %s, %s", s, ModeRegister, ModeCamera)
}
