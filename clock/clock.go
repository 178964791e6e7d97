package clock

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"

	"github.com/mezonai/stakeledger/logx"
)

// Clock returns the current time in unix seconds
type Clock interface {
	Now() int64
}

type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// FixedClock always reports the same instant. Used by the CLI --now flag and
// by tests.
type FixedClock struct {
	t atomic.Int64
}

func NewFixedClock(t int64) *FixedClock {
	c := &FixedClock{}
	c.t.Store(t)
	return c
}

func (c *FixedClock) Now() int64 { return c.t.Load() }

func (c *FixedClock) Set(t int64) { c.t.Store(t) }

// Advance moves the clock by d seconds and returns the new time
func (c *FixedClock) Advance(d int64) int64 { return c.t.Add(d) }

// NTPClock is the local clock corrected by the offset last measured against
// an NTP server.
type NTPClock struct {
	server string
	query  func(host string) (time.Duration, error)

	mu     sync.RWMutex
	offset time.Duration
}

func NewNTPClock(server string) *NTPClock {
	return &NTPClock{server: server, query: queryOffset}
}

func queryOffset(host string) (time.Duration, error) {
	resp, err := ntp.Query(host)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// Sync measures the offset. On failure the previous offset is kept.
func (c *NTPClock) Sync() error {
	offset, err := c.query(c.server)
	if err != nil {
		logx.Warn("CLOCK", fmt.Sprintf("failed to access NTP server %s: %v", c.server, err))
		return err
	}

	c.mu.Lock()
	c.offset = offset
	c.mu.Unlock()

	if offset > time.Second || offset < -time.Second {
		logx.Warn("CLOCK", fmt.Sprintf("clock offset detected: %s", offset))
	}
	return nil
}

func (c *NTPClock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

func (c *NTPClock) Now() int64 {
	return time.Now().Add(c.Offset()).Unix()
}
