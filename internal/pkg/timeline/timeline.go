// Package timeline runs scripted, cancellable timer sequences: the welcome
// splash steps and the typing-text reveal.
package timeline

import (
	"context"
	"time"
)

// Step is one named transition, fired At after the sequence starts.
type Step struct {
	Name string        `json:"name"`
	At   time.Duration `json:"at"`
}

// Sequence is an ordered list of steps with non-decreasing offsets.
type Sequence []Step

// Total is the offset of the last step.
func (s Sequence) Total() time.Duration {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].At
}

// Run fires each step in order, scheduling one timer at a time. When ctx is
// cancelled the pending timer is stopped, no further steps fire and ctx.Err()
// is returned.
func Run(ctx context.Context, seq Sequence, emit func(Step)) error {
	start := time.Now()
	for _, step := range seq {
		wait := step.At - time.Since(start)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		emit(step)
	}
	return nil
}

// Reveal emits text one rune at a time, every interval, passing the revealed
// prefix. The first rune appears after one interval.
func Reveal(ctx context.Context, text string, interval time.Duration, emit func(string)) error {
	runes := []rune(text)
	for i := range runes {
		if err := sleep(ctx, interval); err != nil {
			return err
		}
		emit(string(runes[:i+1]))
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
