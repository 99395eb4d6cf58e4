package barcode

import "strings"

// Scanner configuration frames, bit exact for the scanner model.
var (
	CommandTriggerButton = []byte{0x21, 0x61, 0x41, 0x00}
	CommandFillLightOff  = []byte{0x21, 0x62, 0x41, 0x00}
	CommandAimLightOn    = []byte{0x21, 0x62, 0x42, 0x02}
)

type Command struct {
	Name  string
	Bytes []byte
}

// BootCommands in send order.
var BootCommands = []Command{
	{"trigger-button", CommandTriggerButton},
	{"fill-light-off", CommandFillLightOff},
	{"aim-light-on", CommandAimLightOn},
}

// IsControlResponse reports scanner ack/status frames which are not product codes.
func IsControlResponse(s string) bool {
	if s == "3u" {
		return true
	}
	return len(s) <= 4 && (strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "$"))
}
