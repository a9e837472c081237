package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMSet(t *testing.T) {
	s := NewEmptySet[string]()
	assert.False(t, s.Contains("a"))

	s.Add("a", "b", "a")
	assert.True(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))
	assert.Equal(t, 2, s.Len())
}
