package state_new

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorCount(t *testing.T) {
	t.Parallel()
	_, g := NewTestContext(t, "")
	before := g.ErrorCount()

	g.Log.Errorf("plain")
	g.Log.Tagged("barcode").Error(errors.New("tagged"))
	g.Error(nil, "nil is not logged")
	g.Error(errors.New("annotated"), "step=%d", 2)
	assert.Equal(t, before+3, g.ErrorCount())

	g.Log.Infof("info is not counted")
	assert.Equal(t, before+3, g.ErrorCount())
}
