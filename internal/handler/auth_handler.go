package handler

import (
	"net/http"
	"strings"

	"secondguess/backend/internal/auth"
	"secondguess/backend/internal/database"
	"secondguess/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// LoginInput defines the structure for the login form.
type LoginInput struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// RegisterInput defines the structure for the registration form.
type RegisterInput struct {
	Username  string `form:"username" binding:"required"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}

// ShowLogin renders the login form.
func ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.tmpl", gin.H{"Next": c.Query("next")})
}

// Login authenticates a user and issues a session cookie.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		render(c, http.StatusOK, "login.tmpl", gin.H{
			"Error": "Please enter both a username and a password.",
			"Next":  c.Query("next"),
		})
		return
	}

	var user models.User
	err := database.DB.Where("username = ?", input.Username).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		render(c, http.StatusOK, "login.tmpl", gin.H{
			"Error":    "Please enter a correct username and password.",
			"Username": input.Username,
			"Next":     c.Query("next"),
		})
		return
	}

	if err := auth.LoginUser(c, &user); err != nil {
		logrus.WithError(err).Error("failed to issue session")
		render(c, http.StatusOK, "login.tmpl", gin.H{"Error": "Unable to log in. Try again."})
		return
	}

	c.Redirect(http.StatusFound, safeNext(c))
}

// Logout clears the session and returns to the login page.
func Logout(c *gin.Context) {
	auth.LogoutUser(c)
	c.Redirect(http.StatusFound, "/login/")
}

// ShowRegister renders the registration form.
func ShowRegister(c *gin.Context) {
	render(c, http.StatusOK, "register.tmpl", gin.H{"Next": c.Query("next")})
}

// Register creates an account and logs the new user in.
func Register(c *gin.Context) {
	var input RegisterInput
	fieldErrors := map[string]string{}

	if err := c.ShouldBind(&input); err != nil {
		fieldErrors["form"] = "All fields are required."
	} else {
		if len(input.Password1) < 8 {
			fieldErrors["password1"] = "Password must be at least 8 characters."
		}
		if input.Password1 != input.Password2 {
			fieldErrors["password2"] = "The two password fields didn't match."
		}
		var count int64
		database.DB.Model(&models.User{}).Where("username = ?", input.Username).Count(&count)
		if count > 0 {
			fieldErrors["username"] = "A user with that username already exists."
		}
	}

	if len(fieldErrors) > 0 {
		render(c, http.StatusOK, "register.tmpl", gin.H{
			"Errors":   fieldErrors,
			"Username": input.Username,
			"Next":     c.Query("next"),
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		render(c, http.StatusOK, "register.tmpl", gin.H{
			"Errors": map[string]string{"form": "Unable to create the account. Try again."},
		})
		return
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		render(c, http.StatusOK, "register.tmpl", gin.H{
			"Errors":   map[string]string{"username": "A user with that username already exists."},
			"Username": input.Username,
		})
		return
	}

	if err := auth.LoginUser(c, &user); err != nil {
		logrus.WithError(err).Error("failed to issue session")
		c.Redirect(http.StatusFound, "/login/")
		return
	}

	c.Redirect(http.StatusFound, safeNext(c))
}

// safeNext returns the ?next= target when it is a local path, otherwise
// the index. Protocol-relative and backslash-smuggled URLs are rejected.
func safeNext(c *gin.Context) string {
	next := c.Query("next")
	if next == "" {
		next = c.PostForm("next")
	}
	if !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") ||
		strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
