package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidRateLimit = errors.New("invalid rate limit syntax")

// ParseRateLimit parses the rate limit syntax into tokens per second and the
// burst size. An empty string disables the limit.
// sample inputs:
//
//	100      (100 tokens per second)
//	2+1/5s   (2 initial tokens, 1 token per 5 seconds)
//	5+3/1m   (5 initial tokens, 3 tokens per minute)
//	3m       (1 token per 3 minutes)
//	1/3m     (1 token per 3 minutes)
//
// A zero burst means the caller picks one.
func ParseRateLimit(desc string) (perSecond float64, burst int, err error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return 0, 0, nil
	}

	if v, err := strconv.ParseFloat(desc, 64); err == nil {
		if v < 0 {
			return 0, 0, errors.Wrapf(ErrInvalidRateLimit, "negative rate %q", desc)
		}
		return v, 0, nil
	}

	var r = 1.0
	var durStr string

	if _, err := fmt.Sscanf(desc, "%d+%f/%s", &burst, &r, &durStr); err != nil {
		burst = 0
		r = 1.0
		if _, err := fmt.Sscanf(desc, "%f/%s", &r, &durStr); err != nil {
			// need to reset
			r = 1.0
			durStr = desc
		}
	}

	duration, err := time.ParseDuration(durStr)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrInvalidRateLimit, "%q: %v", desc, err)
	}

	if duration <= 0 || r <= 0 || burst < 0 {
		return 0, 0, errors.Wrapf(ErrInvalidRateLimit, "%q: rate, duration and burst must be positive", desc)
	}

	return r / duration.Seconds(), burst, nil
}
