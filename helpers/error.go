package helpers

import (
	"strings"
	"sync"

	"github.com/juju/errors"
)

// FoldErrors skips nil entries. Single error is returned as is,
// so errors.IsNotValid and friends still work on it.
func FoldErrors(errs []error) error {
	var first error
	ss := make([]string, 0, len(errs))
	for _, e := range errs {
		if e == nil {
			continue
		}
		if first == nil {
			first = e
		}
		ss = append(ss, e.Error())
	}
	switch len(ss) {
	case 0:
		return nil
	case 1:
		return first
	}
	return errors.Errorf("%d errors:\n%s", len(ss), strings.Join(ss, "\n"))
}

// WrapErrChan runs fn and sends result into errch, for parallel hardware init.
func WrapErrChan(wg *sync.WaitGroup, errch chan<- error, fn func() error) {
	defer wg.Done()
	errch <- fn()
}

// FoldErrChan drains closed errch.
func FoldErrChan(errch <-chan error) error {
	var errs []error
	for e := range errch {
		errs = append(errs, e)
	}
	return FoldErrors(errs)
}
