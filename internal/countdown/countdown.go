package countdown

import "time"

type TimeLeft struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Until splits target-now into whole days, hours, minutes and seconds.
// Everything is zero once target has been reached.
func Until(now, target time.Time) TimeLeft {
	diff := target.Sub(now)
	if diff <= 0 {
		return TimeLeft{}
	}

	secs := int64(diff / time.Second)
	return TimeLeft{
		Days:    secs / 86400,
		Hours:   secs / 3600 % 24,
		Minutes: secs / 60 % 60,
		Seconds: secs % 60,
	}
}

func (t TimeLeft) Done() bool {
	return t == TimeLeft{}
}

type Unit struct {
	Label string
	Value int64
}

func (t TimeLeft) Units() []Unit {
	return []Unit{
		{Label: "Days", Value: t.Days},
		{Label: "Hours", Value: t.Hours},
		{Label: "Minutes", Value: t.Minutes},
		{Label: "Seconds", Value: t.Seconds},
	}
}

// Clock recomputes the time left against a fixed target.
type Clock struct {
	target time.Time
	now    func() time.Time
}

func NewClock(target time.Time, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{target: target, now: now}
}

func (c *Clock) Target() time.Time {
	return c.target
}

func (c *Clock) Left() TimeLeft {
	return Until(c.now(), c.target)
}
