package hydroponics

import "time"

// DedupWindow is the minimum spacing between two archived history records of a device.
const DedupWindow = time.Hour

// WindowStart returns the lower bound of the rolling window ending at now.
func WindowStart(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}

// WithinWindow reports whether a record stamped at last still blocks archiving
// at now. A record exactly one window old does not.
func WithinWindow(last, now time.Time, window time.Duration) bool {
	return last.After(WindowStart(now, window))
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

var SystemClock Clock = ClockFunc(func() time.Time {
	return time.Now().UTC()
})
