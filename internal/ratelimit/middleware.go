package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/virelia/pancrisk/internal/errors"
)

// exempt paths are never rate limited
var exempt = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Middleware enforces the per-IP limit and sets standard headers.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if exempt[c.Request.URL.Path] {
			c.Next()
			return
		}

		res := l.AllowIP(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retryAfter := fmt.Sprintf("%.0f", res.RetryAfter.Seconds())
			c.Header("Retry-After", retryAfter)
			appErr := apperrors.NewRateLimitError(retryAfter)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}

		c.Next()
	}
}
