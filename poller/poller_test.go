package poller

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestUnmarshalYAML(t *testing.T) {
	testCases := []struct {
		description   string
		shouldBeError bool
		input         string
		want          Config
	}{
		{
			description: "valid case",
			input:       `interval: 24h`,
			want:        Config{Interval: 24 * time.Hour},
		},
		{
			description: "run on start",
			input: `interval: 1h
runOnStart: true`,
			want: Config{Interval: time.Hour, RunOnStart: true},
		},
		{
			description: "no interval key",
			input:       `runOnStart: false`,
			want:        Config{Interval: DefaultInterval},
		},
		{
			description:   "not an object",
			shouldBeError: true,
			input:         `[]`,
		},
		{
			description:   "unparseable duration",
			shouldBeError: true,
			input:         `interval: 5y`,
		},
		{
			description:   "zero interval",
			shouldBeError: true,
			input:         `interval: 0s`,
		},
		{
			description:   "interval less than a minute",
			shouldBeError: true,
			input:         `interval: 24s`,
		},
		{
			description:   "runOnStart not a boolean",
			shouldBeError: true,
			input:         `runOnStart: sometimes`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var c Config
			dec := yaml.NewDecoder(bytes.NewBuffer([]byte(tc.input)))
			err := dec.Decode(&c)
			if (err != nil) != tc.shouldBeError {
				t.Fatalf(
					"expected error status of %v but got %v with error %v",
					tc.shouldBeError,
					err != nil,
					err,
				)
			}
			if err == nil {
				assert.Equal(t, tc.want, c)
			}
		})
	}
}

func TestStartLoop(t *testing.T) {
	t.Run("stops after the iteration limit", func(t *testing.T) {
		calls := 0
		StartLoop(&Loop{IterationLimit: 3}, func() error {
			calls++
			return nil
		})
		assert.Equal(t, 3, calls)
	})

	t.Run("runs on start", func(t *testing.T) {
		calls := 0
		StartLoop(&Loop{IterationLimit: 2, RunOnStart: true}, func() error {
			calls++
			return nil
		})
		assert.Equal(t, 3, calls)
	})

	t.Run("reports errors and keeps going", func(t *testing.T) {
		errCh := make(chan error, 5)
		calls := 0
		StartLoop(&Loop{IterationLimit: 3, ErrCh: errCh}, func() error {
			calls++
			if calls == 2 {
				return errors.New("disk full")
			}
			return nil
		})
		close(errCh)

		assert.Equal(t, 3, calls)
		var errs []error
		for err := range errCh {
			errs = append(errs, err)
		}
		assert.Len(t, errs, 1)
	})

	t.Run("returns when stopped", func(t *testing.T) {
		tickCh := make(chan time.Time)
		stopCh := make(chan struct{})
		done := make(chan struct{})
		calls := make(chan struct{}, 1)

		go func() {
			StartLoop(&Loop{TickCh: tickCh, StopCh: stopCh}, func() error {
				calls <- struct{}{}
				return nil
			})
			close(done)
		}()

		tickCh <- time.Now()
		<-calls
		close(stopCh)

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("the loop did not stop")
		}
	})
}
