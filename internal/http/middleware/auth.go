package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/auth"
	"tourdesk/internal/domain"
	"tourdesk/internal/utils"
)

const (
	sessionKey    = "auth_session"
	sessionErrKey = "auth_session_error"
)

// Session reads the bearer token into an auth.Session. Auth failures are left
// to RequireSession; an unreachable revocation store fails the request with 503.
func Session(issuer *auth.TokenIssuer, revoked auth.RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := auth.Init(c.Request.Context(), c.GetHeader("Authorization"), issuer, revoked)
		if domain.IsInternal(err) {
			utils.LogEventf(GetRequestID(c), "auth", "session", "store_error=%v", err)
			abortJSON(c, http.StatusServiceUnavailable, "session_store_unavailable", "session store unavailable")
			return
		}
		if err != nil {
			utils.LogEventf(GetRequestID(c), "auth", "session", "anonymous reason=%v", err)
			c.Set(sessionErrKey, err.Error())
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// GetSession returns the request's session, anonymous when none was set.
func GetSession(c *gin.Context) *auth.Session {
	if c != nil {
		if v, ok := c.Get(sessionKey); ok {
			if s, ok := v.(*auth.Session); ok && s != nil {
				return s
			}
		}
	}
	return auth.AnonymousSession()
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c).Authenticated() {
			c.Next()
			return
		}
		msg := "login required"
		if reason := c.GetString(sessionErrKey); reason != "" {
			msg = reason
		}
		abortJSON(c, http.StatusUnauthorized, "unauthorized", msg)
	}
}
