// Package testutil sets up an in-memory database and fixture records
// for handler and model tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"secondguess/backend/internal/config"
	"secondguess/backend/internal/database"
	"secondguess/backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the password every fixture user is created with.
const TestPassword = "password123"

var dbCounter atomic.Int64

// SetupDB opens a fresh in-memory database with the full schema and
// installs it as the process-wide connection for the duration of the
// test.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	// cache=shared with a unique name keeps the database alive across
	// the pooled connections gorm opens, without leaking between tests.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

// SetupConfig installs a test configuration for the duration of the
// test.
func SetupConfig(t *testing.T) *config.Config {
	t.Helper()

	prev := config.AppConfig
	config.AppConfig = &config.Config{
		Addr:           ":0",
		SessionSecret:  "test-secret",
		SessionTTL:     time.Hour,
		RevealCooldown: time.Hour,
	}
	t.Cleanup(func() { config.AppConfig = prev })
	return config.AppConfig
}

// CreateUser creates a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string, superuser bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsSuperuser:  superuser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateGame creates a game with the given members.
func CreateGame(t *testing.T, db *gorm.DB, slug string, members ...*models.User) *models.Game {
	t.Helper()

	game := &models.Game{Slug: slug}
	require.NoError(t, db.Create(game).Error)
	if len(members) > 0 {
		asAny := make([]interface{}, len(members))
		for i, m := range members {
			asAny[i] = m
		}
		require.NoError(t, db.Model(game).Association("Users").Append(asAny...))
	}
	return game
}

// CreateQuestion creates a two-option question worth the given points.
func CreateQuestion(t *testing.T, db *gorm.DB, game *models.Game, respondent *models.User, points int) *models.Question {
	t.Helper()

	question := &models.Question{
		GameID:       game.ID,
		RespondentID: respondent.ID,
		Options:      datatypes.NewJSONSlice([]string{"coffee", "tea"}),
		Points:       points,
	}
	require.NoError(t, db.Create(question).Error)
	return question
}
