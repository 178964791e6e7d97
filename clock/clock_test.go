package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClock(t *testing.T) {
	c := NewFixedClock(1_000)
	assert.Equal(t, int64(1_000), c.Now())
	assert.Equal(t, int64(1_060), c.Advance(60))
	c.Set(5)
	assert.Equal(t, int64(5), c.Now())
}

func TestNTPClock_AppliesOffset(t *testing.T) {
	c := NewNTPClock("test")
	c.query = func(string) (time.Duration, error) { return time.Hour, nil }

	require.NoError(t, c.Sync())
	assert.Equal(t, time.Hour, c.Offset())

	drift := c.Now() - time.Now().Unix()
	assert.InDelta(t, 3600, drift, 2)
}

func TestNTPClock_KeepsOffsetOnFailure(t *testing.T) {
	c := NewNTPClock("test")
	c.query = func(string) (time.Duration, error) { return 2 * time.Second, nil }
	require.NoError(t, c.Sync())

	c.query = func(string) (time.Duration, error) { return 0, errors.New("unreachable") }
	assert.Error(t, c.Sync())
	assert.Equal(t, 2*time.Second, c.Offset())
}
