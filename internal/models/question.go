package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question asks the respondent to pick one of exactly two options;
// every other member of the game guesses which one they picked.
type Question struct {
	gorm.Model
	GameID       uint                        `gorm:"not null;index"`
	RespondentID uint                        `gorm:"not null"`
	Options      datatypes.JSONSlice[string] `gorm:"not null"`
	AnswerIdx    *int
	AnswerText   string     `gorm:"not null;default:''"`
	Points       int        `gorm:"not null"`
	ScoredAt     *time.Time `gorm:"default:null"`

	Game       Game `gorm:"foreignKey:GameID"`
	Respondent User `gorm:"foreignKey:RespondentID"`
}

// Scored reports whether the question has already been scored. The
// value receiver keeps the method callable on questions ranged over in
// templates.
func (q Question) Scored() bool {
	return q.ScoredAt != nil
}

// SaveAnswerFields records the respondent's own choice on the question.
// It is a no-op unless the acting user is the respondent.
func (q *Question) SaveAnswerFields(db *gorm.DB, answerIdx int, answerText string, isRespondent bool) error {
	if !isRespondent {
		return nil
	}

	q.AnswerIdx = &answerIdx
	q.AnswerText = answerText
	return db.Model(q).Select("answer_idx", "answer_text").Updates(map[string]interface{}{
		"answer_idx":  answerIdx,
		"answer_text": answerText,
	}).Error
}
