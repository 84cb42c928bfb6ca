// internal/middleware/helpers.go
package middleware

import (
	"strconv"

	"contenthub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// MustGetUserID gets the user ID from context or panics
func MustGetUserID(c *gin.Context) int64 {
	userID, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return userID
}

// MustGetJTI gets JTI from context or panics
func MustGetJTI(c *gin.Context) string {
	jti, exists := GetJTI(c)
	if !exists {
		panic("jti not found in context")
	}
	return jti
}

// PathID parses an integer path parameter. A non-numeric value matches no
// resource, so the request is answered with 404.
func PathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Not found.")
		return 0, false
	}
	return id, true
}
