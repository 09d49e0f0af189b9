package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// poNumberGenerator allocates collision-free purchase order numbers within
// a run: prefix + YYMMDD date stamp + two-digit sequence. The date stamp
// is captured at construction; Reset zeroes only the sequence. Numbers are
// unique per generator lifetime, not across process restarts.
type poNumberGenerator struct {
	mu        sync.Mutex
	prefix    string
	dateStamp string
	seq       int
}

func newPONumberGenerator(prefix string, now time.Time) *poNumberGenerator {
	if prefix == "" {
		prefix = "PO"
	}
	return &poNumberGenerator{
		prefix:    prefix,
		dateStamp: now.Format("060102"),
	}
}

// Generate increments the sequence and returns the next order number.
func (g *poNumberGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s%s%02d", g.prefix, g.dateStamp, g.seq)
}

// Reset restarts the sequence at 1 for the next Generate call.
func (g *poNumberGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
