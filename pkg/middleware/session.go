package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const SessionCookie = "calc_session"

// SessionID returns the wizard session id carried by the request, if any.
func SessionID(c *gin.Context) string {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return id
}

// SetSessionID stores the wizard session id in an HttpOnly cookie.
func SetSessionID(c *gin.Context, id string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
}
