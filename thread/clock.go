package thread

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource issues node ids. Every call returns an id no earlier call returned.
type IDSource interface {
	Next() ID
}

// Clock is a per-site counter used to generate identifiers for nodes.
// Ids have the form "<site>.<counter>", so two clocks with different sites
// never collide. It is safe for concurrent use.
type Clock struct {
	site    uint32
	counter atomic.Uint64
}

// NewClock returns a clock for the given site.
func NewClock(site uint32) *Clock {
	return &Clock{site: site}
}

// Site returns the site the clock issues ids for.
func (c *Clock) Site() uint32 {
	return c.site
}

// Next increments the clock and returns the resulting id.
func (c *Clock) Next() ID {
	return ID(fmt.Sprintf("%d.%d", c.site, c.counter.Add(1)))
}

// Observe moves the clock past every id in f that was issued for the same site.
func (c *Clock) Observe(f Forest) {
	Walk(f, func(n *Node, _ int) bool {
		site, counter, ok := parseClockID(n.ID)
		if !ok || site != c.site {
			return true
		}
		for {
			cur := c.counter.Load()
			if counter <= cur || c.counter.CompareAndSwap(cur, counter) {
				break
			}
		}
		return true
	})
}

func parseClockID(id ID) (uint32, uint64, bool) {
	siteStr, counterStr, ok := strings.Cut(string(id), ".")
	if !ok {
		return 0, 0, false
	}
	site, err := strconv.ParseUint(siteStr, 10, 32)
	if err != nil {
		return 0, 0, false
	}
	counter, err := strconv.ParseUint(counterStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return uint32(site), counter, true
}

// UUIDSource issues random UUIDs.
type UUIDSource struct{}

func (UUIDSource) Next() ID {
	return ID(uuid.NewString())
}
