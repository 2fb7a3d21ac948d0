// Package security provides hardening middleware for the API surface.
package security

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/virelia/pancrisk/internal/errors"
)

// HeadersMiddleware adds security headers to all responses
func HeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// HSTS only behind HTTPS
		if os.Getenv("ENABLE_HSTS") == "true" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// ValidateContentType rejects non-JSON bodies on JSON endpoints. Multipart
// uploads (the batch CSV endpoint) are allowed through.
func ValidateContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}

		ct := c.GetHeader("Content-Type")
		if strings.HasPrefix(ct, "application/json") || strings.HasPrefix(ct, "multipart/form-data") {
			c.Next()
			return
		}

		appErr := apperrors.NewPayloadError("Content-Type must be application/json or multipart/form-data", nil)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	}
}

// MaxBodySize caps request bodies to keep batch uploads bounded.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
