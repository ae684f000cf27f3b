package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientRateLimiter keeps a token bucket per client address.
type ClientRateLimiter struct {
	clients  map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
	ipHeader string
}

// NewClientRateLimiter creates a limiter allowing r requests per second
// with burst b. When ipHeader is non-empty (e.g. behind a reverse proxy),
// the client address is read from that header instead of the connection.
func NewClientRateLimiter(r rate.Limit, b int, ipHeader string) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients:  make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
		ipHeader: ipHeader,
	}
}

func (l *ClientRateLimiter) limiterFor(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.clients[client]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.clients[client] = limiter
	}
	return limiter
}

func (l *ClientRateLimiter) clientAddr(c *gin.Context) string {
	if l.ipHeader != "" {
		if ip := c.GetHeader(l.ipHeader); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}

// Middleware rejects clients that exceed their bucket with 429.
func (l *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(l.clientAddr(c)).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
