package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHasPrefix(t *testing.T) {
	id := New("IH")
	assert.True(t, strings.HasPrefix(id, "IH_"))
	assert.Greater(t, len(id), len("IH_")+10)
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := New("S")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewUniqueWithFrozenClock(t *testing.T) {
	// Uniqueness must not depend on the timestamp component advancing.
	old := unixNano
	unixNano = func() int64 { return 1700000000000000000 }
	defer func() { unixNano = old }()

	a := New("IH")
	b := New("IH")
	assert.NotEqual(t, a, b)
}
