package models

import "gorm.io/gorm"

// User represents a player account.
type User struct {
	gorm.Model
	Username     string  `gorm:"size:150;unique;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	IsSuperuser  bool    `gorm:"not null;default:false"`
	Games        []*Game `gorm:"many2many:game_users;"`
}
