package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPONumberGenerator_Format(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	g := newPONumberGenerator("PO", now)

	assert.Equal(t, "PO26082301", g.Generate())
	assert.Equal(t, "PO26082302", g.Generate())
}

func TestPONumberGenerator_DefaultPrefix(t *testing.T) {
	g := newPONumberGenerator("", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "PO26010201", g.Generate())
}

func TestPONumberGenerator_UniqueWithinLifetime(t *testing.T) {
	g := newPONumberGenerator("PO", time.Now())
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := g.Generate()
		assert.False(t, seen[n], "duplicate PO number %s", n)
		seen[n] = true
	}
}

func TestPONumberGenerator_ResetRestartsSequence(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	g := newPONumberGenerator("PO", now)

	for i := 0; i < 7; i++ {
		g.Generate()
	}
	g.Reset()

	// Sequence restarts at 1; the date stamp is unchanged.
	assert.Equal(t, "PO26082301", g.Generate())
	assert.Equal(t, "PO26082302", g.Generate())
	assert.Equal(t, "PO26082303", g.Generate())
}
