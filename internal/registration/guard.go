package registration

import (
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/time/rate"
)

var (
	ErrInFlight    = errors.New("a submission with this token is already in progress")
	ErrRateLimited = errors.New("too many submissions")
)

const (
	COMPLETED_TTL = 24 * time.Hour
	// Entries, not bytes: both caches cost 1 per item.
	MAX_COMPLETED = 1 << 17
	MAX_CLIENTS   = 1 << 14

	// An evicted limiter only hands the client a fresh bucket.
	LIMITER_TTL = 10 * time.Minute
)

// Guard keeps one form token from being sent twice and throttles clients.
// A token is in flight while the intake call runs and completed once it was
// accepted; completed tokens replay their confirmation.
type Guard struct {
	inflight  sync.Map
	completed *ristretto.Cache
	ttl       time.Duration

	mu         sync.Mutex
	limiters   *ristretto.Cache
	limiterTTL time.Duration
	perMinute  int
}

func newCountCache(maxItems int64) (*ristretto.Cache, error) {
	return ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxItems * 10,
		MaxCost:            maxItems,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
}

func NewGuard(perMinute int, ttl time.Duration) (*Guard, error) {
	completed, err := newCountCache(MAX_COMPLETED)
	if err != nil {
		return nil, err
	}
	limiters, err := newCountCache(MAX_CLIENTS)
	if err != nil {
		completed.Close()
		return nil, err
	}
	if ttl <= 0 {
		ttl = COMPLETED_TTL
	}
	return &Guard{
		completed:  completed,
		ttl:        ttl,
		limiters:   limiters,
		limiterTTL: LIMITER_TTL,
		perMinute:  perMinute,
	}, nil
}

// Allow reports whether client may send another registration. A non-positive
// limit disables throttling.
func (g *Guard) Allow(client string) bool {
	if g.perMinute <= 0 {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if x, ok := g.limiters.Get(client); ok {
		return x.(*rate.Limiter).Allow()
	}

	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(g.perMinute)), g.perMinute)
	g.limiters.SetWithTTL(client, l, 1, g.limiterTTL)
	g.limiters.Wait()
	return l.Allow()
}

// Begin claims token. It returns the earlier confirmation when the token was
// already accepted and ErrInFlight when another request holds it.
func (g *Guard) Begin(token string) (*Confirmation, error) {
	if c, ok := g.Completed(token); ok {
		return c, nil
	}
	if _, loaded := g.inflight.LoadOrStore(token, struct{}{}); loaded {
		return nil, ErrInFlight
	}
	return nil, nil
}

// Finish releases token. A nil confirmation means the attempt failed and the
// token may be used again. It returns false when an accepted token could not
// be kept for replay.
func (g *Guard) Finish(token string, c *Confirmation) bool {
	defer g.inflight.Delete(token)

	if c == nil {
		return true
	}
	if !g.completed.SetWithTTL(token, *c, 1, g.ttl) {
		return false
	}
	// Admission is decided asynchronously; a successful Set is not a stored item.
	g.completed.Wait()
	_, ok := g.completed.Get(token)
	return ok
}

func (g *Guard) Completed(token string) (*Confirmation, bool) {
	x, ok := g.completed.Get(token)
	if !ok {
		return nil, false
	}
	c := x.(Confirmation)
	return &c, true
}

func (g *Guard) Close() {
	g.completed.Close()
	g.limiters.Close()
}
