package register

//go:generate stringer -type=State -trimprefix=State
type State uint32

const (
	StateNormal   State = iota // scanning items
	StateThankYou              // payment accepted, returns to Normal after timeout
)
