package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const CookieName = "token"

// CookieConfig holds the attributes of the session cookie. The cookie is
// always HttpOnly.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

// CookieFor returns the cookie attributes for a deployment. Production serves
// the frontend from another site, so the cookie must be cross-site and secure.
func CookieFor(production bool) CookieConfig {
	if production {
		return CookieConfig{Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookieConfig{SameSite: http.SameSiteStrictMode}
}

func (cc CookieConfig) set(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(cc.SameSite)
	c.SetCookie(CookieName, token, int(ttl/time.Second), "/", "", cc.Secure, true)
}

func (cc CookieConfig) clear(c *gin.Context) {
	c.SetSameSite(cc.SameSite)
	c.SetCookie(CookieName, "", -1, "/", "", cc.Secure, true)
}
