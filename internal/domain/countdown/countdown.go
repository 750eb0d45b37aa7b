// Package countdown computes the time left until the convention starts.
package countdown

import (
	"fmt"
	"time"
)

// Remaining is the time left split into display units.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	// Started is true once the target has passed.
	Started bool `json:"started"`
}

// Until returns the time left from now to target. All units are zero once
// target has passed.
func Until(target, now time.Time) Remaining {
	d := target.Sub(now)
	if d <= 0 {
		return Remaining{Started: true}
	}
	secs := int64(d / time.Second)
	return Remaining{
		Days:    secs / 86_400,
		Hours:   secs / 3_600 % 24,
		Minutes: secs / 60 % 60,
		Seconds: secs % 60,
	}
}

// Pad formats n with at least two digits.
func Pad(n int64) string {
	return fmt.Sprintf("%02d", n)
}

// Units returns label/value pairs in display order.
func (r Remaining) Units() []Unit {
	return []Unit{
		{Label: "days", Value: Pad(r.Days)},
		{Label: "hours", Value: Pad(r.Hours)},
		{Label: "minutes", Value: Pad(r.Minutes)},
		{Label: "seconds", Value: Pad(r.Seconds)},
	}
}

// Unit is one rendered countdown cell.
type Unit struct {
	Label string
	Value string
}
