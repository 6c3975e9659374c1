package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/campusbuddy/internal/app/models/dto"
)

// UserIDHeader carries the caller's user ID, set by the upstream gateway
// after it has authenticated the request
const UserIDHeader = "X-User-ID"

// userIDKey is the gin context key holding the caller's user ID
const userIDKey = "userID"

// CallerIdentity requires a UUID in the X-User-ID header and stores it in
// the context for handlers. Authentication happens upstream.
func CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if raw == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeMissingIdentity, "Caller identity required").
				WithDetails(UserIDHeader + " header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeMissingIdentity, "Caller identity required").
				WithField(UserIDHeader).
				WithDetails("user ID must be a UUID")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(userIDKey, id.String())
		c.Next()
	}
}

// UserID returns the caller's user ID stored by CallerIdentity
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
