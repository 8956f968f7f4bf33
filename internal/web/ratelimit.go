package web

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const rateLimitMessage = "Too many requests, please try again later."

// windowLimiter allows a fixed number of requests per client in each window.
// A client's window starts with its first request and resets once it has
// fully elapsed.
type windowLimiter struct {
	mu       sync.Mutex
	visitors map[string]*window
	limit    int
	period   time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	count int
	start time.Time
}

func newWindowLimiter(limit int, period time.Duration) *windowLimiter {
	rl := &windowLimiter{
		visitors: make(map[string]*window),
		limit:    limit,
		period:   period,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go sweep(rl.stop, time.Minute, rl.cleanup)
	return rl
}

// allow records a request from key. When the window is used up it returns
// false and how long until the window resets.
func (rl *windowLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok || now.Sub(v.start) >= rl.period {
		rl.visitors[key] = &window{count: 1, start: now}
		return true, 0
	}

	if v.count >= rl.limit {
		return false, v.start.Add(rl.period).Sub(now)
	}
	v.count++
	return true, 0
}

func (rl *windowLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.start) >= rl.period {
			delete(rl.visitors, key)
		}
	}
}

func (rl *windowLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", retryAfter(retry))
			writeError(w, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *windowLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// ipLimiter is a token bucket per client: burst requests at once, refilled
// evenly over the window.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	every    rate.Limit
	burst    int
	expiry   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(requests int, window time.Duration) *ipLimiter {
	rl := &ipLimiter{
		visitors: make(map[string]*bucket),
		every:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		expiry:   max(window*3, time.Minute),
		stop:     make(chan struct{}),
	}
	go sweep(rl.stop, time.Minute, rl.cleanup)
	return rl
}

func (rl *ipLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &bucket{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *ipLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if time.Since(v.lastSeen) > rl.expiry {
			delete(rl.visitors, key)
		}
	}
}

func (rl *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := rl.limiter(clientIP(r)).Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", retryAfter(delay))
			writeError(w, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *ipLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// sweep calls fn every interval until stop is closed.
func sweep(stop <-chan struct{}, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fn()
		}
	}
}

// retryAfter formats d as whole seconds, rounded up.
func retryAfter(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
