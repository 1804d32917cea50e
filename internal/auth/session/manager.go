// Package session handles the browser cookie carrying the opaque session
// token. The token itself is stored hashed in the sessions table; the
// cookie is only transport.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/finbook/internal/config"
)

const defaultCookieName = "finbook_session"

// Manager reads and writes the session cookie: host-scoped, httpOnly,
// SameSite=Lax. Secure follows the environment config.
type Manager struct {
	name   string
	secure bool
}

func NewManager(cfg config.Config) *Manager {
	name := strings.TrimSpace(cfg.AuthCookieName)
	if name == "" {
		name = defaultCookieName
	}
	return &Manager{name: name, secure: cfg.AuthCookieSecure}
}

func (m *Manager) CookieName() string { return m.name }

// ReadToken returns the raw session token, or false when the cookie is
// absent or blank.
func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(m.name)
	if err != nil || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// Set aligns the cookie lifetime with the session row's expiry so the
// browser drops it when the server would reject it anyway.
func (m *Manager) Set(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.name, token, maxAge, "/", "", m.secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.name, "", -1, "/", "", m.secure, true)
}
