package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/handlers"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/internal/routes"
	"github.com/itzRohit45/Student-Progress-Management/internal/services"
	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
	"github.com/itzRohit45/Student-Progress-Management/pkg/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeCF is a scriptable services.CodeforcesAPI. Unset functions fall back to
// an existing user with no history.
type fakeCF struct {
	existsFn func(handle string) (bool, error)
	ratingFn func(handle string) ([]services.CFRatingChange, error)
	subsFn   func(handle string) ([]services.CFSubmission, error)

	syncedHandles []string
}

func (f *fakeCF) UserExists(_ context.Context, handle string) (bool, error) {
	f.syncedHandles = append(f.syncedHandles, handle)
	if f.existsFn != nil {
		return f.existsFn(handle)
	}
	return true, nil
}

func (f *fakeCF) FetchUserInfo(_ context.Context, handle string) (*services.CFUser, error) {
	return &services.CFUser{Handle: handle}, nil
}

func (f *fakeCF) FetchUserRating(_ context.Context, handle string) ([]services.CFRatingChange, error) {
	if f.ratingFn != nil {
		return f.ratingFn(handle)
	}
	return nil, nil
}

func (f *fakeCF) FetchUserSubmissions(_ context.Context, handle string) ([]services.CFSubmission, error) {
	if f.subsFn != nil {
		return f.subsFn(handle)
	}
	return nil, nil
}

// setupRouter builds a fresh in-memory database and a router with the full
// API surface mounted, backed by the given fake Codeforces API.
func setupRouter(t *testing.T, cf services.CodeforcesAPI) (*gin.Engine, *services.CronService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	syncSvc := services.NewSyncService(cf)
	syncSvc.StudentDelay = 0
	cronSvc := services.NewCronService(syncSvc, nil)
	t.Cleanup(cronSvc.Stop)

	handlers.Init(syncSvc, cronSvc)

	router := gin.New()
	api := router.Group("/api")
	routes.RegisterStudentRoutes(api)
	routes.RegisterCodeforcesRoutes(api)
	routes.RegisterConfigRoutes(api)
	return router, cronSvc
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v\n%s", err, rec.Body.String())
	}
	return out
}

func seedStudent(t *testing.T, name, email, handle string) models.Student {
	t.Helper()
	student := models.Student{
		ID:               utils.NewUUID(),
		Name:             name,
		Email:            email,
		CodeforcesHandle: handle,
		LastDataUpdate:   time.Now(),
	}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
	return student
}

func seedSnapshot(t *testing.T, studentID string, data models.CodeforcesData) models.CodeforcesData {
	t.Helper()
	data.ID = utils.NewUUID()
	data.StudentID = studentID
	if err := database.DB.Create(&data).Error; err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}
	return data
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }
