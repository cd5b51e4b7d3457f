package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/agentdouble/kpix/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

// minIdleTTL bounds how long an unused organization limiter is kept.
const minIdleTTL = 10 * time.Minute

type orgLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// OrgRateLimiter throttles a route per organization. It runs behind
// JWTMiddleware; anonymous requests pass through untouched.
//
// Limiters idle for longer than idleTTL are swept on lookup. idleTTL is never
// shorter than a full refill, so a swept limiter would have been at full
// burst anyway.
type OrgRateLimiter struct {
	mu        sync.Mutex
	limiters  map[primitive.ObjectID]*orgLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewOrgRateLimiter(perMinute, burst int) *OrgRateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	idleTTL := minIdleTTL
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
		if refill := time.Minute * time.Duration(burst) / time.Duration(perMinute); refill > idleTTL {
			idleTTL = refill
		}
	}
	return &OrgRateLimiter{
		limiters: make(map[primitive.ObjectID]*orgLimiter),
		limit:    limit,
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// allow takes one token from the organization's bucket.
func (l *OrgRateLimiter) allow(orgID primitive.ObjectID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for id, entry := range l.limiters {
			if now.Sub(entry.lastSeen) >= l.idleTTL {
				delete(l.limiters, id)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[orgID]
	if !ok {
		entry = &orgLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[orgID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *OrgRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if ok && !l.allow(p.OrganizationID) {
			w.Header().Set("Retry-After", "60")
			utils.HandleMessageResponse(w, "too many requests, try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
