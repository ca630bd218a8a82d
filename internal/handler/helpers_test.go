package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"secondguess/backend/internal/router"
	"secondguess/backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const sessionCookie = "sg_session"

// setup wires a fresh config, database, and router for one test.
func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testutil.SetupConfig(t)
	db := testutil.SetupDB(t)
	return router.New(), db
}

// login authenticates through the real login endpoint and returns the
// session cookie.
func login(t *testing.T, r *gin.Engine, username string) *http.Cookie {
	t.Helper()

	form := url.Values{
		"username": {username},
		"password": {testutil.TestPassword},
	}
	w := postForm(t, r, nil, "/login/", form)
	require.Equal(t, http.StatusFound, w.Code, "login should redirect on success")

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func get(t *testing.T, r *gin.Engine, session *http.Cookie, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, r *gin.Engine, session *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
