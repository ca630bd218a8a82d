// Package redirect provides a check-or-redirect primitive. A failed
// precondition deep inside a handler's call chain aborts the request
// with a signal that Middleware converts to a 302 at the router
// boundary, so intermediate helpers don't have to thread a result
// value back up.
package redirect

import (
	"net/http"

	"secondguess/backend/internal/flash"

	"github.com/gin-gonic/gin"
)

// signal is the panic value recognized by Middleware. It is unexported
// so nothing outside this package can throw or catch it.
type signal struct {
	location     string
	flashLevel   string
	flashMessage string
}

// Check aborts the request with a redirect to location when cond is
// true. When cond is false it does nothing.
func Check(cond bool, location string) {
	if cond {
		panic(signal{location: location})
	}
}

// CheckWarn is Check with a warning flash message attached to the
// redirect.
func CheckWarn(cond bool, location, message string) {
	if cond {
		panic(signal{location: location, flashLevel: flash.LevelWarning, flashMessage: message})
	}
}

// To unconditionally aborts the request with a redirect to location.
func To(location string) {
	panic(signal{location: location})
}

// WarnTo unconditionally aborts with a redirect and a warning flash.
func WarnTo(location, message string) {
	panic(signal{location: location, flashLevel: flash.LevelWarning, flashMessage: message})
}

// Middleware recovers redirect signals raised by Check and friends and
// turns them into 302 responses. Any other panic is re-raised for the
// regular recovery middleware.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			sig, ok := r.(signal)
			if !ok {
				panic(r)
			}
			if sig.flashMessage != "" {
				flash.Add(c, sig.flashLevel, sig.flashMessage)
			}
			c.Redirect(http.StatusFound, sig.location)
			c.Abort()
		}()
		c.Next()
	}
}
