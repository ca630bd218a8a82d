package handler

import (
	"net/http"

	"secondguess/backend/internal/auth"
	"secondguess/backend/internal/flash"

	"github.com/gin-gonic/gin"
)

// render draws an HTML template with the current user and any pending
// flash messages merged into the context.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = auth.CurrentUser(c)
	data["Flashes"] = flash.Pop(c)
	c.HTML(status, name, data)
}

func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.tmpl", nil)
	c.Abort()
}
