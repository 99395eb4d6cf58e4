package helpers

import (
	"fmt"
	"sync"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestFoldErrors(t *testing.T) {
	t.Parallel()
	assert.NoError(t, FoldErrors(nil))
	assert.NoError(t, FoldErrors([]error{nil, nil}))

	single := errors.NotValidf("ui.mode=%q", "radio")
	err := FoldErrors([]error{nil, single})
	assert.Equal(t, single, err)
	assert.True(t, errors.IsNotValid(err))

	err = FoldErrors([]error{fmt.Errorf("rfid: probe"), nil, fmt.Errorf("camera: open")})
	assert.EqualError(t, err, "2 errors:\nrfid: probe\ncamera: open")
}

func TestWrapErrChan(t *testing.T) {
	t.Parallel()
	wg := sync.WaitGroup{}
	wg.Add(2)
	errch := make(chan error, 2)
	go WrapErrChan(&wg, errch, func() error { return nil })
	go WrapErrChan(&wg, errch, func() error { return fmt.Errorf("display") })
	wg.Wait()
	close(errch)
	assert.EqualError(t, FoldErrChan(errch), "display")
}
