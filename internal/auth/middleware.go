package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/models"
)

const contextUserKey = "userID"

// Middleware authenticates the bearer token and stores the current user id
// in the gin context. The account must still exist and be active.
func Middleware(tokens *TokenManager, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := tokens.ExtractTokenID(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		var user models.User
		if err := gdb.WithContext(c.Request.Context()).
			Select("id", "is_active").
			First(&user, userID).Error; err != nil || !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by Middleware
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
