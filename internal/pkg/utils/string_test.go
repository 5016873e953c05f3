package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
}

func TestPick(t *testing.T) {
	assert.Equal(t, "", Pick([]string(nil)))
	items := []string{"morning", "noon", "evening", "night"}
	for i := 0; i < 20; i++ {
		assert.Contains(t, items, Pick(items))
	}
}
