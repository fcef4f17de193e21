package scraper

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// humanDelay draws |N(avg, sqrt(avg))| seconds.
func humanDelay(avg time.Duration) time.Duration {
	if avg <= 0 {
		return 0
	}
	mean := avg.Seconds()
	secs := math.Abs(rand.NormFloat64()*math.Sqrt(mean) + mean)
	return time.Duration(secs * float64(time.Second))
}

// sleepAround waits a human-like delay centred on avg or until ctx is done.
func sleepAround(ctx context.Context, avg time.Duration) error {
	d := humanDelay(avg)
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
