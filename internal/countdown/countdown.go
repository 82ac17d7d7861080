// AngelaMos | 2026
// countdown.go

package countdown

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const (
	Expired         = "Expired"
	DefaultInterval = time.Second
)

// TimeRemaining folds whole days into Hours so callers never render a days
// field.
type TimeRemaining struct {
	Total   time.Duration
	Hours   int
	Minutes int
	Seconds int
}

func Remaining(end, now time.Time) TimeRemaining {
	total := end.Sub(now)
	if total <= 0 {
		return TimeRemaining{}
	}

	return TimeRemaining{
		Total:   total,
		Hours:   int(total / time.Hour),
		Minutes: int(total % time.Hour / time.Minute),
		Seconds: int(total % time.Minute / time.Second),
	}
}

func Format(end, now time.Time) string {
	return Remaining(end, now).String()
}

func (t TimeRemaining) String() string {
	if t.Total <= 0 {
		return Expired
	}

	parts := make([]string, 0, 3)
	if t.Hours > 0 {
		parts = append(parts, strconv.Itoa(t.Hours)+"h")
	}
	if t.Minutes > 0 || t.Hours > 0 {
		parts = append(parts, strconv.Itoa(t.Minutes)+"m")
	}
	parts = append(parts, strconv.Itoa(t.Seconds)+"s")

	return strings.Join(parts, " ")
}

// Ticker recomputes a countdown on a fixed cadence.
type Ticker struct {
	Interval time.Duration
	Now      func() time.Time
}

func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{Interval: interval, Now: time.Now}
}

// Watch sends the formatted countdown right away and then once per
// interval. The channel closes after Expired is sent or when ctx is done.
func (t *Ticker) Watch(ctx context.Context, end time.Time) <-chan string {
	out := make(chan string, 1)

	go func() {
		defer close(out)

		if !t.emit(ctx, out, end) {
			return
		}

		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !t.emit(ctx, out, end) {
					return
				}
			}
		}
	}()

	return out
}

// emit reports whether the watch should keep ticking.
func (t *Ticker) emit(ctx context.Context, out chan<- string, end time.Time) bool {
	s := Format(end, t.now())

	select {
	case out <- s:
	case <-ctx.Done():
		return false
	}

	return s != Expired
}

func (t *Ticker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func Watch(ctx context.Context, end time.Time) <-chan string {
	return NewTicker(DefaultInterval).Watch(ctx, end)
}
