package services

import (
	"context"
	"testing"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
	"github.com/itzRohit45/Student-Progress-Management/pkg/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB swaps the global DB for a fresh in-memory SQLite instance.
func setupTestDB(t *testing.T) {
	t.Helper()
	logger.Init("test")

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	_ = db.Migrator().DropTable(&models.Student{}, &models.CodeforcesData{}, &models.Config{})
	if err := db.AutoMigrate(&models.Student{}, &models.CodeforcesData{}, &models.Config{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	database.DB = db
	database.Redis = nil
}

func createTestStudent(t *testing.T, name, email, handle string) models.Student {
	t.Helper()
	student := models.Student{
		ID:               utils.NewUUID(),
		Name:             name,
		Email:            email,
		CodeforcesHandle: handle,
		LastDataUpdate:   time.Now(),
	}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

func createTestSnapshot(t *testing.T, studentID string, data models.CodeforcesData) models.CodeforcesData {
	t.Helper()
	data.ID = utils.NewUUID()
	data.StudentID = studentID
	if err := database.DB.Create(&data).Error; err != nil {
		t.Fatalf("failed to create test snapshot: %v", err)
	}
	return data
}

// fakeCF is a scriptable CodeforcesAPI. Unset functions fall back to an
// existing user with no history.
type fakeCF struct {
	existsFn func(handle string) (bool, error)
	infoFn   func(handle string) (*CFUser, error)
	ratingFn func(handle string) ([]CFRatingChange, error)
	subsFn   func(handle string) ([]CFSubmission, error)
}

func (f *fakeCF) UserExists(_ context.Context, handle string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(handle)
	}
	return true, nil
}

func (f *fakeCF) FetchUserInfo(_ context.Context, handle string) (*CFUser, error) {
	if f.infoFn != nil {
		return f.infoFn(handle)
	}
	return &CFUser{Handle: handle}, nil
}

func (f *fakeCF) FetchUserRating(_ context.Context, handle string) ([]CFRatingChange, error) {
	if f.ratingFn != nil {
		return f.ratingFn(handle)
	}
	return nil, nil
}

func (f *fakeCF) FetchUserSubmissions(_ context.Context, handle string) ([]CFSubmission, error) {
	if f.subsFn != nil {
		return f.subsFn(handle)
	}
	return nil, nil
}

func newTestSyncService(cf CodeforcesAPI) *SyncService {
	s := NewSyncService(cf)
	s.StudentDelay = 0
	return s
}

// fakeMailer records reminder sends and can be told to fail.
type fakeMailer struct {
	sent    []string
	sendErr error
}

func (m *fakeMailer) SendInactivityReminder(student models.Student, _ time.Time) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, student.Email)
	return nil
}

func intPtr(v int) *int {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}
