package auth

import (
	"net/http"
	"net/url"

	"secondguess/backend/internal/database"
	"secondguess/backend/internal/flash"
	"secondguess/backend/internal/models"
	"secondguess/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// RequireUser resolves the session cookie to a user and stores it on
// the context. Requests without a valid session are redirected to the
// login page with the original path in ?next=.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := sessionUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// RequireSuperuser gates an endpoint to superusers. It must be used
// AFTER RequireUser.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsSuperuser {
			flash.Warning(c, "You do not have permission to do that.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by RequireUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func sessionUser(c *gin.Context) *models.User {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		return nil
	}

	userID, err := jwt.ParseToken(token)
	if err != nil {
		return nil
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil
	}
	return &user
}
