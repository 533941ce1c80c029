package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashStringIsDeterministic(t *testing.T) {
	first := HashString("secret", "key")
	second := HashString("secret", "key")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestHashStringDependsOnKey(t *testing.T) {
	assert.NotEqual(t, HashString("secret", "key-a"), HashString("secret", "key-b"))
}

func TestHashEquals(t *testing.T) {
	digest := HashString("secret", "key")

	assert.True(t, HashEquals(digest, HashString("secret", "key")))
	assert.False(t, HashEquals(digest, HashString("other", "key")))
}

func TestUUIDGeneratorProducesUniqueIDs(t *testing.T) {
	g := NewUUIDGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := g.Generate()
		assert.NotContains(t, seen, id)
		seen[id] = struct{}{}
	}
}
