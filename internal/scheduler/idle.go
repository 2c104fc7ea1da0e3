package scheduler

import "time"

// DelayIdleHost approximates the host idle opportunity with a fixed
// grace delay; the daemon has no render loop to observe, so "idle" is
// simply a short quiet period after the debounce expires.
type DelayIdleHost struct {
	Delay time.Duration
}

// NewDelayIdleHost creates an idle host with the given grace delay.
func NewDelayIdleHost(delay time.Duration) *DelayIdleHost {
	return &DelayIdleHost{Delay: delay}
}

// RequestIdleCallback schedules fn after the grace delay.
func (h *DelayIdleHost) RequestIdleCallback(fn func()) (cancel func()) {
	t := time.AfterFunc(h.Delay, fn)
	return func() { t.Stop() }
}
