package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per client id and forgets clients that
// stay idle longer than the expiry.
type Limiter struct {
	expiry   time.Duration
	burst    int
	limitRPS float64
	clients  map[string]*clientLimiter
	mu       sync.Mutex
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewLimiter(burst int, expiry time.Duration, limitRPS float64) *Limiter {
	lm := &Limiter{
		expiry:   expiry,
		limitRPS: limitRPS,
		burst:    burst,
		clients:  make(map[string]*clientLimiter),
	}
	go lm.evict()
	return lm
}

func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(l.limitRPS), l.burst),
		}
		l.clients[id] = cl
	}

	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (l *Limiter) evict() {
	for range time.Tick(time.Minute) {
		l.mu.Lock()
		for id, v := range l.clients {
			if time.Since(v.lastAccess) > l.expiry {
				delete(l.clients, id)
			}
		}
		l.mu.Unlock()
	}
}

func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
