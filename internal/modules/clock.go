package modules

import (
	"time"

	"github.com/lemonbar/manager/internal/markup"
)

const (
	clockEvent = "toggle_clock"
	clockIcon  = ""
	dateIcon   = ""

	// dateShownFor is how long a click keeps the date visible before the
	// module falls back to the time on its next update.
	dateShownFor = 5 * time.Second
)

// Clock renders the time of day. Clicking it switches to the date for a
// few seconds, then it flips back on its own.
type Clock struct {
	now       func() time.Time
	toggledAt time.Time
}

func NewClock() *Clock { return &Clock{now: time.Now} }

func (c *Clock) Output() (string, error) {
	if !c.toggledAt.IsZero() && c.now().Sub(c.toggledAt) > dateShownFor {
		c.toggledAt = time.Time{}
	}
	if !c.toggledAt.IsZero() {
		return markup.ClickArea(clockEvent, dateIcon+" "+c.now().Format("02/01/2006")), nil
	}
	return markup.ClickArea(clockEvent, clockIcon+" "+c.now().Format("15:04")), nil
}

func (c *Clock) HandleEvent(event string) (bool, error) {
	if event != clockEvent {
		return false, nil
	}
	if c.toggledAt.IsZero() {
		c.toggledAt = c.now()
	} else {
		c.toggledAt = time.Time{}
	}
	// Invalidate so the flip is visible before the next timed update.
	return true, nil
}
