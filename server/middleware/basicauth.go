// Package middleware contains the Gin middleware stack: authentication,
// request IDs, panic recovery, request logging, and body size limits.
package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BasicAuthConfig configures the basic-auth middleware with a single static
// credential pair.
type BasicAuthConfig struct {
	Username string
	Password string
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
}

// BasicAuth returns a Gin middleware that enforces HTTP basic authentication.
// Every failure mode collapses into the same 401 response so a probing client
// cannot distinguish a missing header from a wrong password.
func BasicAuth(cfg BasicAuthConfig) gin.HandlerFunc {
	wantUser := []byte(cfg.Username)
	wantPass := []byte(cfg.Password)

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		user, pass, ok := decodeBasic(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		// Compare both fields unconditionally so timing does not leak which
		// one was wrong.
		userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass) == 1
		if !userOK || !passOK {
			unauthorized(c)
			return
		}

		c.Set("auth_user", user)
		c.Next()
	}
}

// decodeBasic parses an Authorization header of the form "Basic <base64>".
func decodeBasic(header string) (user, pass string, ok bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", false
	}

	user, pass, found := strings.Cut(string(raw), ":")
	if !found {
		return "", "", false
	}
	return user, pass, true
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Basic")
	c.String(http.StatusUnauthorized, "Unauthorized")
	c.Abort()
}
