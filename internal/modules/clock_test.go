package modules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockShowsTimeByDefault(t *testing.T) {
	c := NewClock()
	now := time.Date(2024, 3, 14, 15, 9, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	out, err := c.Output()
	require.NoError(t, err)
	assert.Contains(t, out, "15:09")
	assert.Contains(t, out, "%{A:toggle_clock:}")
}

func TestClockToggleShowsDateAndInvalidates(t *testing.T) {
	c := NewClock()
	now := time.Date(2024, 3, 14, 15, 9, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	invalidate, err := c.HandleEvent("toggle_clock")
	require.NoError(t, err)
	assert.True(t, invalidate, "toggle must force a redraw")

	out, err := c.Output()
	require.NoError(t, err)
	assert.Contains(t, out, "14/03/2024")
}

func TestClockFallsBackAfterTimeout(t *testing.T) {
	c := NewClock()
	now := time.Date(2024, 3, 14, 15, 9, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.HandleEvent("toggle_clock")
	require.NoError(t, err)

	now = now.Add(dateShownFor + time.Second)
	out, err := c.Output()
	require.NoError(t, err)
	assert.Contains(t, out, "15:09", "date view expires on its own")
}

func TestClockIgnoresForeignEvents(t *testing.T) {
	c := NewClock()
	invalidate, err := c.HandleEvent("set_volume_Master_3")
	require.NoError(t, err)
	assert.False(t, invalidate)
}
