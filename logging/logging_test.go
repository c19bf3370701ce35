package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupReturnsLogger(t *testing.T) {
	logger := Setup(Options{Service: "signerd"})
	assert.NotNil(t, logger)
}

func TestWithConnIDProducesDistinctIDs(t *testing.T) {
	base := Setup(Options{})
	a := WithConnID(base)
	b := WithConnID(base)
	assert.NotEqual(t, a, b)
}
