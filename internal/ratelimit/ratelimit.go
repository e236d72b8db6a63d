// Package ratelimit throttles repeated calls from the same caller identity.
package ratelimit

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultMaxEntries caps the visitor map so many distinct caller
// identities cannot grow it without bound.
const DefaultMaxEntries = 10000

// Limiter enforces a minimum interval between accepted calls per caller
type Limiter struct {
	interval   time.Duration
	maxEntries int
	visitors   map[string]*visitor
	mu         sync.Mutex
	logger     zerolog.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter with the given minimum interval between
// accepted calls from one caller. maxEntries caps the visitor map;
// values <= 0 fall back to DefaultMaxEntries.
func NewLimiter(minInterval time.Duration, maxEntries int) *Limiter {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Limiter{
		interval:   minInterval,
		maxEntries: maxEntries,
		visitors:   make(map[string]*visitor),
		logger:     zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
}

// Admit checks whether the caller may proceed. When denied it returns the
// remaining wait in fractional seconds. A race admitting one extra call
// under load is tolerable; the map itself is mutex-protected.
func (l *Limiter) Admit(callerID string) (bool, float64) {
	v := l.visitor(callerID)

	now := time.Now()
	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, l.interval.Seconds()
	}

	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		l.logger.Warn().
			Str("caller", callerID).
			Float64("retry_after", delay.Seconds()).
			Msg("Rate limit exceeded")
		return false, delay.Seconds()
	}

	return true, 0
}

// Interval returns the configured minimum interval
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Len returns the number of tracked callers
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// visitor gets or creates the per-caller limiter, evicting stale entries
// when the map is at capacity.
func (l *Limiter) visitor(callerID string) *visitor {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[callerID]
	if exists {
		v.lastSeen = time.Now()
		return v
	}

	if len(l.visitors) >= l.maxEntries {
		l.evictLocked()
	}

	v = &visitor{
		limiter:  rate.NewLimiter(rate.Every(l.interval), 1),
		lastSeen: time.Now(),
	}
	l.visitors[callerID] = v
	return v
}

// evictLocked drops callers idle for longer than ten intervals; if none
// qualify it drops the least recently seen entry so insertion can proceed.
func (l *Limiter) evictLocked() {
	stale := 10 * l.interval
	evicted := 0
	var oldestKey string
	var oldestSeen time.Time

	for id, v := range l.visitors {
		if time.Since(v.lastSeen) > stale {
			delete(l.visitors, id)
			evicted++
			continue
		}
		if oldestKey == "" || v.lastSeen.Before(oldestSeen) {
			oldestKey = id
			oldestSeen = v.lastSeen
		}
	}

	if evicted == 0 && oldestKey != "" {
		delete(l.visitors, oldestKey)
	}
}
