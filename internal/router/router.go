package router

import (
	"net/http"

	"secondguess/backend/internal/auth"
	"secondguess/backend/internal/config"
	"secondguess/backend/internal/handler"
	"secondguess/backend/internal/redirect"
	"secondguess/backend/internal/web"

	"github.com/gin-gonic/gin"
)

// New builds the gin engine with all routes and middleware wired.
func New() *gin.Engine {
	if !config.AppConfig.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), redirect.Middleware())
	r.SetHTMLTemplate(web.Templates())

	// Liveness check, no authentication required
	r.GET("/health/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Session authentication
	r.GET("/login/", handler.ShowLogin)
	r.POST("/login/", handler.Login)
	r.GET("/register/", handler.ShowRegister)
	r.POST("/register/", handler.Register)
	r.POST("/logout/", handler.Logout)

	// Game routes (login required)
	authed := r.Group("/", auth.RequireUser())
	{
		authed.GET("", handler.Index)
		authed.GET("/game/:slug/", handler.GameDetail)
		authed.GET("/question/:id/", handler.QuestionDetail)
		authed.GET("/question/:id/selection/create/", handler.ShowSelectionCreate)
		authed.POST("/question/:id/selection/create/", handler.CreateSelection)
		authed.POST("/question/:id/score/", auth.RequireSuperuser(), handler.ScoreQuestion)
	}

	return r
}
