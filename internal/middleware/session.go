package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadready/permitprep-backend/internal/response"
)

// SessionCookie is the cookie carrying the opaque exam-session ID. The ID
// is a random UUID issued when an exam starts; it carries no claims and
// identifies exactly one session in the session store.
const SessionCookie = "permitprep_session"

// contextKeySessionID is the Gin context key the session ID is stored
// under after RequireSession runs.
const contextKeySessionID = "session_id"

// RequireSession extracts the session cookie and parks its value in the
// context. Requests without a cookie are rejected; whether the session
// still exists is the handler's concern.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRequired)
			return
		}
		c.Set(contextKeySessionID, id)
		c.Next()
	}
}

// SessionID returns the session ID set by RequireSession, or "" if the
// middleware did not run.
func SessionID(c *gin.Context) string {
	id, _ := c.Get(contextKeySessionID)
	s, _ := id.(string)
	return s
}

// SetSessionCookie issues the session cookie on an exam-start response.
func SetSessionCookie(c *gin.Context, id string, maxAgeSeconds int) {
	c.SetCookie(SessionCookie, id, maxAgeSeconds, "/", "", false, true)
}
