package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// sourceCtxKey is the Gin context key used to store the authenticated trigger source.
const sourceCtxKey = "trigger_source"

// APIKeyMiddleware authenticates trigger deliveries by mapping X-API-Key to
// the name of the source org that owns the key.
func APIKeyMiddleware(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		source, ok := lookup(keys, strings.TrimSpace(c.GetHeader("X-API-Key")))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(sourceCtxKey, source)
		c.Next()
	}
}

// lookup compares the presented key against every configured key in constant time.
func lookup(keys map[string]string, presented string) (string, bool) {
	if presented == "" {
		return "", false
	}
	var (
		source string
		found  bool
	)
	for key, src := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(presented)) == 1 {
			source, found = src, true
		}
	}
	return source, found
}

// Source returns the authenticated trigger source from the request context.
func Source(c *gin.Context) string {
	v, _ := c.Get(sourceCtxKey)
	s, _ := v.(string)
	return s
}
