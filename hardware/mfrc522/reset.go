package mfrc522

import (
	"time"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
)

const consumerLabel = "playreg-rfid"

// HardReset pulses NRSTPD low, chip needs about 40ms of oscillator startup after.
func HardReset(chip gpio.Chiper, line uint32, sleep func(time.Duration)) error {
	lines, err := chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, consumerLabel, line)
	if err != nil {
		return errors.Annotatef(err, "gpio open line=%d", line)
	}
	defer lines.Close()
	set := lines.SetFunc(line)
	set(0)
	if err = lines.Flush(); err != nil {
		return errors.Annotate(err, "reset low")
	}
	sleep(2 * time.Millisecond)
	set(1)
	if err = lines.Flush(); err != nil {
		return errors.Annotate(err, "reset high")
	}
	sleep(50 * time.Millisecond)
	return nil
}

// OpenHardReset is HardReset on named gpiochip device, e.g. /dev/gpiochip0.
func OpenHardReset(chipName string, line uint32) error {
	chip, err := gpio.Open(chipName, consumerLabel)
	if err != nil {
		return errors.Annotatef(err, "gpio open chip=%s", chipName)
	}
	defer chip.Close()
	return HardReset(chip, line, time.Sleep)
}
