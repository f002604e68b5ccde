package service

import (
	"time"

	"github.com/noah-isme/starcoin-api/internal/models"
)

// Clock supplies the current time in the configured time zone, which decides
// what "today" means for archival cascades.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock builds a clock for loc; nil means the local zone.
func NewClock(loc *time.Location) Clock {
	return Clock{now: time.Now, loc: loc}
}

// FixedClock always reports t. Used by tests and the CLI.
func FixedClock(t time.Time) Clock {
	return Clock{now: func() time.Time { return t }, loc: t.Location()}
}

// Now returns the current time in the clock's zone.
func (c Clock) Now() time.Time {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	loc := c.loc
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Today returns the current calendar day as YYYY-MM-DD.
func (c Clock) Today() string {
	return c.Now().Format(models.DateLayout)
}
