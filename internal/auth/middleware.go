package auth

import (
	"net/http"
	"time"

	"causaltrace/internal/session"
	"causaltrace/internal/users"

	"github.com/gin-gonic/gin"
)

const userKey = "causaltrace.user"

// CookieAuth validates the session cookie and loads its user.
// Requests without a valid session get 401 JSON.
func CookieAuth(store users.Store, secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(session.CookieName)
		if err != nil || cookie == "" {
			abortCookieAuth(c, "Session required")
			return
		}
		uid, ok := session.Parse(secret, cookie, ttl, time.Now())
		if !ok {
			abortCookieAuth(c, "Invalid session")
			return
		}
		u, err := store.ByID(c.Request.Context(), uid)
		if err != nil {
			abortCookieAuth(c, "Invalid session")
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// CurrentUser returns the user loaded by CookieAuth.
func CurrentUser(c *gin.Context) (users.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return users.User{}, false
	}
	u, ok := v.(users.User)
	return u, ok
}

func abortCookieAuth(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
