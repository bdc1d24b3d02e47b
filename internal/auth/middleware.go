package auth

import (
	"net/http"

	"adminboard/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionReader is the read side of session.Manager.
type SessionReader interface {
	Current() session.State
}

// RequireSession rejects requests while nobody is signed in and injects the current
// identity into the request context.
// It does not perform RBAC checks; those belong to internal/rbac.
func RequireSession(s SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := s.Current()
		if st.IsLoading {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session is loading"})
			return
		}
		if !st.IsAuthenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		ctx := WithIdentity(c.Request.Context(), st.User.ID, string(st.User.Role))
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", st.User.ID)
		c.Set("role", string(st.User.Role))

		c.Next()
	}
}
