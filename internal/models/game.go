package models

import "gorm.io/gorm"

// Game is a group of players working through a shared question list.
// Players join by submitting the game's slug.
type Game struct {
	gorm.Model
	Slug      string     `gorm:"size:50;unique;not null"`
	Users     []*User    `gorm:"many2many:game_users;"`
	Questions []Question `gorm:"foreignKey:GameID"`
}
