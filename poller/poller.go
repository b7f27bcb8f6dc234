package poller

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultInterval is used when the config doesn't set an interval.
const DefaultInterval = 24 * time.Hour

// Polling must take place at most once a minute. A daily cadence is the norm,
// the floor only catches typos like "24s".
const minInterval = time.Minute

// Config contains the user-facing schedule settings.
type Config struct {
	Interval time.Duration
	// Run the task once as soon as the loop starts instead of waiting for
	// the first tick.
	RunOnStart bool
}

// UnmarshalYAML parses the user-provided schedule section.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("can't parse the schedule config: %v", err)
	}

	d, ok := v["interval"]
	if !ok {
		d = DefaultInterval.String()
	}

	pd, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf(
			"can't parse the user-provided polling interval as a duration: %v",
			err,
		)
	}
	if pd < minInterval {
		return fmt.Errorf("polling interval must be at least %v", minInterval)
	}
	c.Interval = pd

	if r, ok := v["runOnStart"]; ok {
		b, err := strconv.ParseBool(r)
		if err != nil {
			return fmt.Errorf("can't parse runOnStart as a boolean: %v", err)
		}
		c.RunOnStart = b
	}

	return nil
}

// Loop wires a task to its cadence.
type Loop struct {
	// For time.Ticker ticks
	TickCh <-chan time.Time
	// Closing StopCh makes StartLoop return. May be nil.
	StopCh <-chan struct{}
	// Errors returned by the task are sent here and the loop keeps going.
	// May be nil, in which case errors are dropped.
	ErrCh chan<- error
	// Run the task once before waiting for ticks.
	RunOnStart bool
	// Number of ticks to handle before returning. Used for testing.
	IterationLimit uint
}

// StartLoop calls task on every tick until StopCh is closed, TickCh is
// closed, or IterationLimit ticks have been handled. Runs never overlap: a
// tick that arrives while the task is running waits for it to finish.
func StartLoop(l *Loop, task func() error) {
	run := func() {
		if err := task(); err != nil && l.ErrCh != nil {
			l.ErrCh <- err
		}
	}

	if l.RunOnStart {
		run()
	}

	// Implement the iteration limit by replacing the tick channel with a
	// buffered channel pre-loaded with ticks.
	if l.IterationLimit > 0 {
		ch := make(chan time.Time, l.IterationLimit)
		for i := uint(0); i < l.IterationLimit; i++ {
			ch <- time.Time{}
		}
		close(ch)
		l.TickCh = ch
	}

	for {
		select {
		case <-l.StopCh:
			return
		case _, ok := <-l.TickCh:
			if !ok {
				return
			}
			run()
		}
	}
}
