package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashSeparatesParts(t *testing.T) {
	assert.NotEqual(t, Hash("ab", "c"), Hash("a", "bc"))
	assert.Equal(t, Hash("turkish", "Hello"), Hash("turkish", "Hello"))
	assert.Len(t, Hash("x"), 64)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Karan...", Truncate("Karanlık", 5))
	assert.Equal(t, "Karanlı...", Truncate("Karanlık gece", 7))
}
