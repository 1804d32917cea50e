package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/finbook/internal/auth/domain"
)

const contextIdentityKey = "identity"

// AuthRequired resolves the session cookie into an authenticated, active
// user and stores it on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextIdentityKey, identity)
		c.Next()
	}
}

// MaintenanceGuard rejects writes while a restore is in flight. Reads
// stay open so the UI can keep polling.
func (s *Server) MaintenanceGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.settings.InMaintenance() {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		AbortWithError(c, ErrServiceUnavailable)
	}
}

func identityFrom(c *gin.Context) (authdomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return authdomain.Identity{}, false
	}
	identity, ok := value.(authdomain.Identity)
	return identity, ok
}
