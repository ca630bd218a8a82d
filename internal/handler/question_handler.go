package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"secondguess/backend/internal/auth"
	"secondguess/backend/internal/database"
	"secondguess/backend/internal/flash"
	"secondguess/backend/internal/models"
	"secondguess/backend/internal/redirect"
	"secondguess/backend/internal/scoring"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SelectionInput defines the structure for the guess-submission form.
// The fields arrive as hidden inputs, one pair per option button.
type SelectionInput struct {
	OptionIdx  *int   `form:"option_idx" binding:"required"`
	OptionText string `form:"option_text" binding:"required"`
}

// GuessRow is one non-respondent member and their recorded guess, if
// any.
type GuessRow struct {
	Username   string
	OptionText string
	OptionIdx  int
	Points     int
	HasPoints  bool
	HasGuess   bool
}

// OptionPct is one candidate option with the share of guessers who
// picked it.
type OptionPct struct {
	Idx    int
	Option string
	Pct    int
}

func questionDetailURL(id uint) string {
	return fmt.Sprintf("/question/%d/", id)
}

func selectionCreateURL(id uint) string {
	return fmt.Sprintf("/question/%d/selection/create/", id)
}

func getQuestionOr404(c *gin.Context) *models.Question {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		notFound(c)
		return nil
	}

	var question models.Question
	if err := database.DB.Preload("Game").Preload("Respondent").First(&question, id).Error; err != nil {
		notFound(c)
		return nil
	}
	return &question
}

// QuestionDetail renders the results view: who guessed what and the
// per-option percentage breakdown. A viewer who hasn't answered an
// unscored question is sent to the submission page instead.
func QuestionDetail(c *gin.Context) {
	question := getQuestionOr404(c)
	if question == nil {
		return
	}

	user := auth.CurrentUser(c)
	checkMemberOr302(user, &question.Game)

	var mine int64
	database.DB.Model(&models.Selection{}).
		Where("question_id = ? AND user_id = ?", question.ID, user.ID).
		Count(&mine)
	redirect.Check(!question.Scored() && mine == 0, selectionCreateURL(question.ID))

	var respondentSelection *models.Selection
	var found models.Selection
	err := database.DB.
		Where("question_id = ? AND user_id = ?", question.ID, question.RespondentID).
		First(&found).Error
	if err == nil {
		respondentSelection = &found
	}

	guessers, optionPcts, guessesExist := questionResults(question)

	render(c, http.StatusOK, "question_detail.tmpl", gin.H{
		"Game":                question.Game,
		"Question":            question,
		"RespondentSelection": respondentSelection,
		"Guessers":            guessers,
		"OptionPcts":          optionPcts,
		"GuessesExist":        guessesExist,
	})
}

// questionResults lists the non-respondent members with their guesses
// and computes each option's share among the guesses actually made.
func questionResults(question *models.Question) ([]GuessRow, []OptionPct, bool) {
	var members []models.User
	database.DB.Model(&models.User{}).
		Joins("JOIN game_users ON game_users.user_id = users.id AND game_users.game_id = ?", question.GameID).
		Where("users.id <> ?", question.RespondentID).
		Order("users.username").
		Find(&members)

	var selections []models.Selection
	database.DB.
		Where("question_id = ? AND user_id <> ?", question.ID, question.RespondentID).
		Find(&selections)

	byUser := make(map[uint]models.Selection, len(selections))
	for _, selection := range selections {
		byUser[selection.UserID] = selection
	}

	guessers := make([]GuessRow, 0, len(members))
	counts := make(map[int]int)
	for _, member := range members {
		row := GuessRow{Username: member.Username}
		if selection, ok := byUser[member.ID]; ok {
			row.OptionText = selection.OptionText
			row.OptionIdx = selection.OptionIdx
			if selection.Points != nil {
				row.Points = *selection.Points
				row.HasPoints = true
			}
			row.HasGuess = true
			counts[selection.OptionIdx]++
		}
		guessers = append(guessers, row)
	}

	total := len(selections)
	optionPcts := make([]OptionPct, 0, len(question.Options))
	for i, option := range question.Options {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(counts[i]) / float64(total) * 100))
		}
		optionPcts = append(optionPcts, OptionPct{Idx: i, Option: option, Pct: pct})
	}

	return guessers, optionPcts, total > 0
}

// ShowSelectionCreate renders the guess-submission page. A user who has
// already answered is sent straight to the results view.
func ShowSelectionCreate(c *gin.Context) {
	question := getQuestionOr404(c)
	if question == nil {
		return
	}

	user := auth.CurrentUser(c)
	checkMemberOr302(user, &question.Game)
	checkNoSelectionOr302(user, question)

	render(c, http.StatusOK, "selection_create.tmpl", gin.H{
		"Game":     question.Game,
		"Question": question,
	})
}

// CreateSelection records a guess (or the respondent's own answer) and
// triggers scoring once every member has answered.
func CreateSelection(c *gin.Context) {
	question := getQuestionOr404(c)
	if question == nil {
		return
	}

	user := auth.CurrentUser(c)
	checkMemberOr302(user, &question.Game)
	checkNoSelectionOr302(user, question)

	var input SelectionInput
	if err := c.ShouldBind(&input); err != nil {
		render(c, http.StatusOK, "selection_create.tmpl", gin.H{
			"Game":     question.Game,
			"Question": question,
			"Error":    "Pick one of the options.",
		})
		return
	}
	if *input.OptionIdx < 0 || *input.OptionIdx >= len(question.Options) {
		render(c, http.StatusOK, "selection_create.tmpl", gin.H{
			"Game":     question.Game,
			"Question": question,
			"Error":    "Pick one of the options.",
		})
		return
	}

	selection := models.Selection{
		UserID:     user.ID,
		QuestionID: question.ID,
		OptionIdx:  *input.OptionIdx,
		OptionText: input.OptionText,
	}
	if err := database.DB.Create(&selection).Error; err != nil {
		// A concurrent duplicate hits the uniqueness constraint; route
		// the user to the results view like the pre-check would have.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			redirect.To(questionDetailURL(question.ID))
		}
		logrus.WithError(err).WithField("question", question.ID).Error("failed to create selection")
		redirect.WarnTo(questionDetailURL(question.ID), "Unable to record your answer. Try again.")
	}

	isRespondent := question.RespondentID == user.ID
	if err := question.SaveAnswerFields(database.DB, *input.OptionIdx, input.OptionText, isRespondent); err != nil {
		logrus.WithError(err).WithField("question", question.ID).Error("failed to save answer fields")
	}

	if readyToScore(question) {
		if _, err := scoreQuestion(question); err != nil {
			logrus.WithError(err).WithField("question", question.ID).Error("failed to score question")
		}
	}

	c.Redirect(http.StatusFound, questionDetailURL(question.ID))
}

// ScoreQuestion is the superuser-only manual trigger. It bypasses the
// all-members-answered requirement but still refuses to score without a
// respondent selection and at least one guess.
func ScoreQuestion(c *gin.Context) {
	question := getQuestionOr404(c)
	if question == nil {
		return
	}

	var respondentCount int64
	database.DB.Model(&models.Selection{}).
		Where("question_id = ? AND user_id = ?", question.ID, question.RespondentID).
		Count(&respondentCount)
	redirect.CheckWarn(respondentCount == 0, questionDetailURL(question.ID),
		"Unable to score. Respondent selection not found.")

	var guessCount int64
	database.DB.Model(&models.Selection{}).
		Where("question_id = ? AND user_id <> ?", question.ID, question.RespondentID).
		Count(&guessCount)
	redirect.CheckWarn(guessCount == 0, questionDetailURL(question.ID),
		"Unable to score. No non-respondent selections found.")

	claimed, err := scoreQuestion(question)
	switch {
	case err != nil:
		logrus.WithError(err).WithField("question", question.ID).Error("failed to score question")
		flash.Warning(c, "Unable to score. Try again.")
	case claimed:
		flash.Add(c, flash.LevelSuccess, "Question scored.")
	default:
		flash.Add(c, flash.LevelInfo, "Question was already scored.")
	}

	c.Redirect(http.StatusFound, questionDetailURL(question.ID))
}

func checkNoSelectionOr302(user *models.User, question *models.Question) {
	var count int64
	database.DB.Model(&models.Selection{}).
		Where("question_id = ? AND user_id = ?", question.ID, user.ID).
		Count(&count)
	redirect.Check(count > 0, questionDetailURL(question.ID))
}

// readyToScore reports whether every member has answered, the
// respondent among them, with at least one guess to grade.
func readyToScore(question *models.Question) bool {
	var memberCount int64
	database.DB.Table("game_users").Where("game_id = ?", question.GameID).Count(&memberCount)

	var selectionCount int64
	database.DB.Model(&models.Selection{}).Where("question_id = ?", question.ID).Count(&selectionCount)

	var respondentCount int64
	database.DB.Model(&models.Selection{}).
		Where("question_id = ? AND user_id = ?", question.ID, question.RespondentID).
		Count(&respondentCount)

	return respondentCount > 0 &&
		selectionCount == memberCount &&
		selectionCount-respondentCount > 0
}

// scoreQuestion transitions the question from pending to scored exactly
// once. The conditional update claims the question; a caller that loses
// the claim (because a concurrent submission or a manual trigger got
// there first) leaves the points alone and returns claimed=false.
func scoreQuestion(question *models.Question) (bool, error) {
	claimed := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		claim := tx.Model(&models.Question{}).
			Where("id = ? AND scored_at IS NULL", question.ID).
			Update("scored_at", now)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return nil
		}
		claimed = true

		var respondentSelection models.Selection
		if err := tx.Where("question_id = ? AND user_id = ?", question.ID, question.RespondentID).
			First(&respondentSelection).Error; err != nil {
			return err
		}

		var selections []*models.Selection
		if err := tx.Where("question_id = ? AND user_id <> ?", question.ID, question.RespondentID).
			Find(&selections).Error; err != nil {
			return err
		}

		scored := scoring.ScoreSelections(selections, &respondentSelection, question.Points)
		for _, selection := range scored {
			if err := tx.Model(selection).Update("points", selection.Points).Error; err != nil {
				return err
			}
		}

		question.ScoredAt = &now
		return nil
	})
	return claimed, err
}
