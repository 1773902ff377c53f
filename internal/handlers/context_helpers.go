package handlers

import "github.com/gin-gonic/gin"

// GetUserIDFromContext extracts the authenticated user's ID placed on the
// context by the auth middleware.
func GetUserIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok
}
