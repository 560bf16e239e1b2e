package services

import (
	"fmt"
	"testing"

	"github.com/microblog-app/backend/internal/config"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/mailer"
	"github.com/microblog-app/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory SQLite database and migrates the
// schema. cache=shared keeps every pooled connection on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Relationship{}, &models.Micropost{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		BcryptCost: bcrypt.MinCost,
		AppBaseURL: "http://localhost:8080",
	}
}

// recordingMailer captures sent tokens so tests can follow emailed links.
// Sends happen on goroutines, so deliveries go through buffered channels.
type recordingMailer struct {
	activations chan string
	resets      chan string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		activations: make(chan string, 8),
		resets:      make(chan string, 8),
	}
}

func (m *recordingMailer) SendActivationEmail(_ *models.User, token string) error {
	m.activations <- token
	return nil
}

func (m *recordingMailer) SendPasswordResetEmail(_ *models.User, token string) error {
	m.resets <- token
	return nil
}

var _ mailer.Mailer = (*recordingMailer)(nil)

func newTestUserService(t *testing.T) (*UserService, *recordingMailer) {
	t.Helper()
	db := setupTestDB(t)
	m := newRecordingMailer()
	return NewUserService(db, m, testConfig()), m
}

func createTestUser(t *testing.T, svc *UserService, name, email string) *models.User {
	t.Helper()
	user, err := svc.Create(&dto.CreateUserRequest{
		Name:                 name,
		Email:                email,
		Password:             "foobarbaz",
		PasswordConfirmation: "foobarbaz",
	})
	if err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}
