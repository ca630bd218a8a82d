package handler_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"secondguess/backend/internal/models"
	"secondguess/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func selectionForm(idx int, text string) url.Values {
	return url.Values{
		"option_idx":  {fmt.Sprint(idx)},
		"option_text": {text},
	}
}

func reload(t *testing.T, db *gorm.DB, q *models.Question) *models.Question {
	t.Helper()
	var fresh models.Question
	require.NoError(t, db.First(&fresh, q.ID).Error)
	return &fresh
}

func selectionPoints(t *testing.T, db *gorm.DB, userID, questionID uint) *int {
	t.Helper()
	var selection models.Selection
	require.NoError(t, db.Where("user_id = ? AND question_id = ?", userID, questionID).First(&selection).Error)
	return selection.Points
}

func TestQuestionDetailRedirectsUnanswered(t *testing.T) {
	r, db := setup(t)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", june)
	question := testutil.CreateQuestion(t, db, game, june, 1)

	session := login(t, r, "june")

	w := get(t, r, session, fmt.Sprintf("/question/%d/", question.ID))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/question/%d/selection/create/", question.ID), w.Header().Get("Location"))
}

func TestSelectionCreateRedirectsWhenAlreadyAnswered(t *testing.T) {
	r, db := setup(t)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", june)
	question := testutil.CreateQuestion(t, db, game, june, 1)

	session := login(t, r, "june")

	path := fmt.Sprintf("/question/%d/selection/create/", question.ID)
	w := postForm(t, r, session, path, selectionForm(0, "coffee"))
	require.Equal(t, http.StatusFound, w.Code)

	// Both the form page and a repeat submission route to the results.
	w = get(t, r, session, path)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/question/%d/", question.ID), w.Header().Get("Location"))

	w = postForm(t, r, session, path, selectionForm(1, "tea"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/question/%d/", question.ID), w.Header().Get("Location"))

	var count int64
	db.Model(&models.Selection{}).Where("question_id = ?", question.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSelectionCreateRejectsOutOfRangeOption(t *testing.T) {
	r, db := setup(t)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", june)
	question := testutil.CreateQuestion(t, db, game, june, 1)

	session := login(t, r, "june")

	path := fmt.Sprintf("/question/%d/selection/create/", question.ID)
	w := postForm(t, r, session, path, selectionForm(5, "nonsense"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pick one of the options.")

	var count int64
	db.Model(&models.Selection{}).Where("question_id = ?", question.ID).Count(&count)
	assert.Zero(t, count)
}

func TestRespondentSubmissionRecordsAnswerFields(t *testing.T) {
	r, db := setup(t)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	session := login(t, r, "respondent")
	path := fmt.Sprintf("/question/%d/selection/create/", question.ID)
	w := postForm(t, r, session, path, selectionForm(0, "coffee"))
	require.Equal(t, http.StatusFound, w.Code)

	fresh := reload(t, db, question)
	require.NotNil(t, fresh.AnswerIdx)
	assert.Equal(t, 0, *fresh.AnswerIdx)
	assert.Equal(t, "coffee", fresh.AnswerText)
	assert.Nil(t, fresh.ScoredAt, "one of two members answered; not ready to score")
}

func TestGuessSubmissionLeavesAnswerFieldsAlone(t *testing.T) {
	r, db := setup(t)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	session := login(t, r, "june")
	path := fmt.Sprintf("/question/%d/selection/create/", question.ID)
	w := postForm(t, r, session, path, selectionForm(1, "tea"))
	require.Equal(t, http.StatusFound, w.Code)

	fresh := reload(t, db, question)
	assert.Nil(t, fresh.AnswerIdx)
	assert.Empty(t, fresh.AnswerText)
}

// The spec's end-to-end scenario: three members, respondent picks
// option 0, the two guessers split. The final submission completes the
// set and triggers scoring.
func TestScoringTriggersOnFinalSubmission(t *testing.T) {
	r, db := setup(t)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	bruce := testutil.CreateUser(t, db, "bruce", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june, bruce)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	path := fmt.Sprintf("/question/%d/selection/create/", question.ID)

	w := postForm(t, r, login(t, r, "respondent"), path, selectionForm(0, "coffee"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Nil(t, reload(t, db, question).ScoredAt)

	w = postForm(t, r, login(t, r, "june"), path, selectionForm(0, "coffee"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Nil(t, reload(t, db, question).ScoredAt, "two of three answered; still pending")

	w = postForm(t, r, login(t, r, "bruce"), path, selectionForm(1, "tea"))
	require.Equal(t, http.StatusFound, w.Code)

	fresh := reload(t, db, question)
	require.NotNil(t, fresh.ScoredAt, "final submission must trigger scoring")

	// june matched (1 pt), bruce missed (0), and with 1 of 2 correct the
	// respondent hit exactly 50% and is paid.
	require.NotNil(t, selectionPoints(t, db, june.ID, question.ID))
	assert.Equal(t, 1, *selectionPoints(t, db, june.ID, question.ID))
	assert.Equal(t, 0, *selectionPoints(t, db, bruce.ID, question.ID))
	assert.Equal(t, 1, *selectionPoints(t, db, respondent.ID, question.ID))
}

func TestScoringSkippedWhenRespondentNeverAnswers(t *testing.T) {
	r, db := setup(t)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	// Only the guesser answers; without the respondent the set can never
	// be complete.
	path := fmt.Sprintf("/question/%d/selection/create/", question.ID)
	w := postForm(t, r, login(t, r, "june"), path, selectionForm(0, "coffee"))
	require.Equal(t, http.StatusFound, w.Code)

	assert.Nil(t, reload(t, db, question).ScoredAt)
	assert.Nil(t, selectionPoints(t, db, june.ID, question.ID))
}

func TestQuestionDetailShowsResultsAfterScoring(t *testing.T) {
	r, db := setup(t)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	bruce := testutil.CreateUser(t, db, "bruce", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june, bruce)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	path := fmt.Sprintf("/question/%d/selection/create/", question.ID)
	postForm(t, r, login(t, r, "respondent"), path, selectionForm(0, "coffee"))
	postForm(t, r, login(t, r, "june"), path, selectionForm(0, "coffee"))
	postForm(t, r, login(t, r, "bruce"), path, selectionForm(1, "tea"))

	w := get(t, r, login(t, r, "june"), fmt.Sprintf("/question/%d/", question.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "respondent picked")
	assert.Contains(t, body, "coffee: 50%")
	assert.Contains(t, body, "tea: 50%")
	assert.Contains(t, body, "june")
	assert.Contains(t, body, "bruce")
}

func TestManualScoreRequiresSuperuser(t *testing.T) {
	r, db := setup(t)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", june)
	question := testutil.CreateQuestion(t, db, game, june, 1)

	session := login(t, r, "june")
	w := postForm(t, r, session, fmt.Sprintf("/question/%d/score/", question.ID), url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Nil(t, reload(t, db, question).ScoredAt)
}

func TestManualScoreNeedsRespondentSelection(t *testing.T) {
	r, db := setup(t)
	testutil.CreateUser(t, db, "admin", true)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	// A guess exists but the respondent never answered.
	require.NoError(t, db.Create(&models.Selection{
		UserID: june.ID, QuestionID: question.ID, OptionIdx: 0, OptionText: "coffee",
	}).Error)

	session := login(t, r, "admin")
	w := postForm(t, r, session, fmt.Sprintf("/question/%d/score/", question.ID), url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/question/%d/", question.ID), w.Header().Get("Location"))
	assert.Nil(t, reload(t, db, question).ScoredAt)
}

func TestManualScoreNeedsAtLeastOneGuess(t *testing.T) {
	r, db := setup(t)
	testutil.CreateUser(t, db, "admin", true)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	game := testutil.CreateGame(t, db, "game1", respondent)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	require.NoError(t, db.Create(&models.Selection{
		UserID: respondent.ID, QuestionID: question.ID, OptionIdx: 0, OptionText: "coffee",
	}).Error)

	session := login(t, r, "admin")
	w := postForm(t, r, session, fmt.Sprintf("/question/%d/score/", question.ID), url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Nil(t, reload(t, db, question).ScoredAt)
}

func TestManualScoreBypassesCompleteness(t *testing.T) {
	r, db := setup(t)
	testutil.CreateUser(t, db, "admin", true)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	bruce := testutil.CreateUser(t, db, "bruce", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june, bruce)
	question := testutil.CreateQuestion(t, db, game, respondent, 2)

	// Two of three members answered; the normal flow would keep waiting.
	require.NoError(t, db.Create(&models.Selection{
		UserID: respondent.ID, QuestionID: question.ID, OptionIdx: 0, OptionText: "coffee",
	}).Error)
	require.NoError(t, db.Create(&models.Selection{
		UserID: june.ID, QuestionID: question.ID, OptionIdx: 0, OptionText: "coffee",
	}).Error)

	session := login(t, r, "admin")
	w := postForm(t, r, session, fmt.Sprintf("/question/%d/score/", question.ID), url.Values{})
	require.Equal(t, http.StatusFound, w.Code)

	fresh := reload(t, db, question)
	require.NotNil(t, fresh.ScoredAt)
	assert.Equal(t, 2, *selectionPoints(t, db, june.ID, question.ID))
	assert.Equal(t, 2, *selectionPoints(t, db, respondent.ID, question.ID))
}

func TestManualScoreDoesNotRescore(t *testing.T) {
	r, db := setup(t)
	testutil.CreateUser(t, db, "admin", true)
	respondent := testutil.CreateUser(t, db, "respondent", false)
	june := testutil.CreateUser(t, db, "june", false)
	game := testutil.CreateGame(t, db, "game1", respondent, june)
	question := testutil.CreateQuestion(t, db, game, respondent, 1)

	require.NoError(t, db.Create(&models.Selection{
		UserID: respondent.ID, QuestionID: question.ID, OptionIdx: 0, OptionText: "coffee",
	}).Error)
	zero := 0
	require.NoError(t, db.Create(&models.Selection{
		UserID: june.ID, QuestionID: question.ID, OptionIdx: 1, OptionText: "tea", Points: &zero,
	}).Error)
	scoredAt := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(question).Update("scored_at", scoredAt).Error)

	session := login(t, r, "admin")
	w := postForm(t, r, session, fmt.Sprintf("/question/%d/score/", question.ID), url.Values{})
	require.Equal(t, http.StatusFound, w.Code)

	// The claim fails on an already-scored question; points are untouched.
	assert.Equal(t, 0, *selectionPoints(t, db, june.ID, question.ID))
	fresh := reload(t, db, question)
	require.NotNil(t, fresh.ScoredAt)
	assert.WithinDuration(t, scoredAt, *fresh.ScoredAt, time.Minute)
}

func TestQuestionDetail404(t *testing.T) {
	r, db := setup(t)
	testutil.CreateUser(t, db, "june", false)

	session := login(t, r, "june")
	w := get(t, r, session, "/question/9999/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
