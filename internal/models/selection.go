package models

import "gorm.io/gorm"

// Selection is one user's recorded choice for one question. Points stays
// null until the question is scored; it is the only field mutated after
// creation.
type Selection struct {
	gorm.Model
	UserID     uint   `gorm:"not null;uniqueIndex:selection_user_question_unique"`
	QuestionID uint   `gorm:"not null;uniqueIndex:selection_user_question_unique"`
	OptionIdx  int    `gorm:"not null"`
	OptionText string `gorm:"not null"`
	Points     *int

	User     User     `gorm:"foreignKey:UserID"`
	Question Question `gorm:"foreignKey:QuestionID"`
}
