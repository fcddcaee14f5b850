package publish

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// RetryPolicy decides whether and when a failed store call is tried again.
type RetryPolicy struct {
	Attempts int           // total tries, including the first
	Base     time.Duration // delay before the second try, doubled per try
	Max      time.Duration // cap on any single delay, Retry-After included
}

// DefaultRetryPolicy is used by the conversion workers.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Base: time.Second, Max: 30 * time.Second}

// Delay reports whether err is worth retrying after attempt (0-indexed) and
// how long to wait first. A Retry-After from the store wins over the
// exponential delay.
func (p RetryPolicy) Delay(err error, attempt int) (time.Duration, bool) {
	var re *RetryableError
	if !errors.As(err, &re) || attempt+1 >= p.Attempts {
		return 0, false
	}
	if re.RetryAfter > 0 {
		return min(re.RetryAfter, p.Max), true
	}
	base := min(p.Base<<attempt, p.Max)
	if base <= 0 {
		return 0, true
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return min(base+jitter, p.Max), true
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP
// date. It returns 0 when the header is absent or unusable.
func parseRetryAfter(h string, now time.Time) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if at, err := http.ParseTime(h); err == nil {
		return max(at.Sub(now), 0)
	}
	return 0
}
