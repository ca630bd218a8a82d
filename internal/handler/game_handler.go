package handler

import (
	"net/http"
	"time"

	"secondguess/backend/internal/auth"
	"secondguess/backend/internal/config"
	"secondguess/backend/internal/database"
	"secondguess/backend/internal/models"
	"secondguess/backend/internal/redirect"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// JoinGameInput defines the structure for the join-a-game form.
type JoinGameInput struct {
	Slug string `form:"slug" binding:"required"`
}

// ScoreRow is one scoreboard line: a member and their total points in
// the game.
type ScoreRow struct {
	Username string
	Points   int
}

// Index renders the join-a-game form. A submitted slug that names an
// existing game adds the user as a member and redirects to the game
// dashboard; an unknown slug re-renders the form with a field error.
func Index(c *gin.Context) {
	if !c.Request.URL.Query().Has("slug") {
		render(c, http.StatusOK, "index.tmpl", nil)
		return
	}

	var input JoinGameInput
	if err := c.ShouldBindQuery(&input); err != nil {
		render(c, http.StatusOK, "index.tmpl", gin.H{"Error": "Enter a game code."})
		return
	}

	var game models.Game
	if err := database.DB.Where("slug = ?", input.Slug).First(&game).Error; err != nil {
		render(c, http.StatusOK, "index.tmpl", gin.H{
			"Error": "Game does not exist",
			"Slug":  input.Slug,
		})
		return
	}

	user := auth.CurrentUser(c)
	if err := database.DB.Model(&game).Association("Users").Append(user); err != nil {
		logrus.WithError(err).WithField("slug", game.Slug).Error("failed to join game")
		render(c, http.StatusOK, "index.tmpl", gin.H{"Error": "Unable to join the game. Try again."})
		return
	}

	c.Redirect(http.StatusFound, "/game/"+game.Slug+"/")
}

// GameDetail renders the game dashboard: the scoreboard plus all scored
// questions and, when the drip-feed allows it, the next pending one.
func GameDetail(c *gin.Context) {
	var game models.Game
	if err := database.DB.Where("slug = ?", c.Param("slug")).First(&game).Error; err != nil {
		notFound(c)
		return
	}

	user := auth.CurrentUser(c)
	checkMemberOr302(user, &game)

	scoreboard := gameScoreboard(&game)
	questions := visibleQuestions(&game)

	render(c, http.StatusOK, "game_detail.tmpl", gin.H{
		"Game":       game,
		"Scoreboard": scoreboard,
		"Questions":  questions,
	})
}

// checkMemberOr302 redirects to the join page with a warning unless the
// user is a member of the game.
func checkMemberOr302(user *models.User, game *models.Game) {
	var count int64
	database.DB.Table("game_users").
		Where("game_id = ? AND user_id = ?", game.ID, user.ID).
		Count(&count)
	redirect.CheckWarn(count == 0, "/", "Join the game before viewing it.")
}

// gameScoreboard totals each member's selection points across the
// game's questions, members with no scored selections included at zero.
func gameScoreboard(game *models.Game) []ScoreRow {
	questionIDs := database.DB.Model(&models.Question{}).
		Select("id").
		Where("game_id = ?", game.ID)

	var rows []ScoreRow
	err := database.DB.Table("users").
		Select("users.username AS username, COALESCE(SUM(selections.points), 0) AS points").
		Joins("JOIN game_users ON game_users.user_id = users.id AND game_users.game_id = ?", game.ID).
		Joins("LEFT JOIN selections ON selections.user_id = users.id AND selections.question_id IN (?)", questionIDs).
		Group("users.id, users.username").
		Order("users.username").
		Scan(&rows).Error
	if err != nil {
		logrus.WithError(err).WithField("slug", game.Slug).Error("failed to build scoreboard")
	}
	return rows
}

// visibleQuestions returns every scored question plus at most one
// pending question: the first one ever, or the next one once the reveal
// cooldown has elapsed since the latest scoring.
func visibleQuestions(game *models.Game) []models.Question {
	var questions []models.Question
	database.DB.Preload("Respondent").
		Where("game_id = ? AND scored_at IS NOT NULL", game.ID).
		Order("points, id").
		Find(&questions)

	var next models.Question
	err := database.DB.Preload("Respondent").
		Where("game_id = ? AND scored_at IS NULL", game.ID).
		Order("points, id").
		First(&next).Error
	if err != nil {
		return questions
	}

	var latest models.Question
	err = database.DB.
		Where("game_id = ? AND scored_at IS NOT NULL", game.ID).
		Order("scored_at DESC").
		First(&latest).Error
	if err != nil {
		// Nothing scored yet: the game's first question is always visible.
		return append(questions, next)
	}

	if time.Since(*latest.ScoredAt) > config.AppConfig.RevealCooldown {
		return append(questions, next)
	}
	return questions
}
