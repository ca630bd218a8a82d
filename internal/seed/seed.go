// Package seed loads a small fixture data set for local development:
// an admin, three players, one game, and its first question.
package seed

import (
	"secondguess/backend/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Run creates the fixture records. It is idempotent: existing users,
// the game, and its question are left untouched.
func Run(db *gorm.DB) error {
	if _, err := ensureUser(db, "admin", "password", true); err != nil {
		return err
	}
	june, err := ensureUser(db, "june", "password", false)
	if err != nil {
		return err
	}
	bruce, err := ensureUser(db, "bruce", "password", false)
	if err != nil {
		return err
	}
	respondent, err := ensureUser(db, "respondent", "password", false)
	if err != nil {
		return err
	}
	var game models.Game
	if err := db.Where(models.Game{Slug: "game1"}).FirstOrCreate(&game).Error; err != nil {
		return err
	}
	if err := db.Model(&game).Association("Users").Append(june, bruce, respondent); err != nil {
		return err
	}

	var questionCount int64
	if err := db.Model(&models.Question{}).Count(&questionCount).Error; err != nil {
		return err
	}
	if questionCount == 0 {
		question := models.Question{
			GameID:       game.ID,
			RespondentID: respondent.ID,
			Options: datatypes.NewJSONSlice([]string{
				"Witness the beginning of planet Earth",
				"Witness the end of planet Earth",
			}),
			Points: 1,
		}
		if err := db.Create(&question).Error; err != nil {
			return err
		}
	}

	logrus.Info("Seed data ready")
	return nil
}

func ensureUser(db *gorm.DB, username, password string, superuser bool) (*models.User, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsSuperuser:  superuser,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
