package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLogical(t *testing.T) {
	assert.Equal(t, Logical, Classify(Inputs{HasPageParam: true}))
}

func TestClassifyPhysicalFromLimit(t *testing.T) {
	assert.Equal(t, Physical, Classify(Inputs{HasLimit: true}))
}

func TestClassifyPhysicalFromPluginAndPageParam(t *testing.T) {
	assert.Equal(t, Physical, Classify(Inputs{HasPageParam: true, HasPlugin: true}))
}

func TestClassifyNone(t *testing.T) {
	assert.Equal(t, None, Classify(Inputs{}))
}

func TestClassifyNoneWhenPluginWithoutPageParam(t *testing.T) {
	assert.Equal(t, None, Classify(Inputs{HasPlugin: true}))
}
