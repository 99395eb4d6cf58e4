package types

import (
	"fmt"

	"github.com/juju/errors"
)

// DeviceOfflineError means optional device failed boot probe.
// Subsystem stays no-op for the rest of the process.
type DeviceOfflineError struct {
	Device string
	Cause  error
}

func (self DeviceOfflineError) Error() string {
	if self.Cause == nil {
		return fmt.Sprintf("%s is offline", self.Device)
	}
	return fmt.Sprintf("%s is offline: %v", self.Device, self.Cause)
}

func (self DeviceOfflineError) Unwrap() error { return self.Cause }

// IsDeviceOffline looks through juju Annotate wrappers.
func IsDeviceOffline(err error) bool {
	_, ok := errors.Cause(err).(DeviceOfflineError)
	return ok
}
