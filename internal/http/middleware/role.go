package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets through only sessions whose role is in allowedRoles.
// Session must run earlier in the chain.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := GetSession(c)
		if !sess.Authenticated() {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "login required")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(sess.Role()))]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		c.Next()
	}
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"details":    nil,
		"request_id": GetRequestID(c),
		"message":    msg,
	})
}
