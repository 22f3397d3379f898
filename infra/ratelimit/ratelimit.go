package ratelimit

import (
	"primor/bizerror"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client key, idle buckets expire from the cache.
type Limiter struct {
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

func NewLimiter(perSecond float64, burst int, idle time.Duration) *Limiter {
	return &Limiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: cache.New(idle, 2*idle),
	}
}

func (l *Limiter) Allow(key string) bool {
	if value, found := l.buckets.Get(key); found {
		bucket := value.(*rate.Limiter)
		// touch to postpone expiration
		l.buckets.SetDefault(key, bucket)
		return bucket.Allow()
	}
	bucket := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(key, bucket, cache.DefaultExpiration); err != nil {
		// lost the race, someone else created it
		value, _ := l.buckets.Get(key)
		if existing, ok := value.(*rate.Limiter); ok {
			bucket = existing
		}
	}
	return bucket.Allow()
}

// PerClientIP rejects requests beyond the limit with ErrRateLimitExceeded.
// A non-positive rate disables limiting.
func PerClientIP(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.limit <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.Allow(ip) {
			logrus.WithFields(logrus.Fields{"ip": ip, "path": c.Request.URL.Path}).Warn("rate limit exceeded")
			panic(bizerror.ErrRateLimitExceeded)
		}
		c.Next()
	}
}
