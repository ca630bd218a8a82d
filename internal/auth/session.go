package auth

import (
	"time"

	"secondguess/backend/internal/config"
	"secondguess/backend/internal/models"
	"secondguess/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "sg_session"

// LoginUser issues a signed session cookie for the user.
func LoginUser(c *gin.Context, user *models.User) error {
	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		return err
	}

	maxAge := int(config.AppConfig.SessionTTL / time.Second)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", false, true)
	return nil
}

// LogoutUser clears the session cookie.
func LogoutUser(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}
