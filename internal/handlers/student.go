package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/internal/services"
	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
	"github.com/itzRohit45/Student-Progress-Management/pkg/utils"
	"gorm.io/gorm"
)

type StudentInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	CodeforcesHandle string `json:"codeforcesHandle"`
	DisableReminders *bool  `json:"disableReminders"`
}

// StudentResponse is a Student plus an optional warning when the best-effort
// Codeforces sync around a create/update failed. The primary operation still
// succeeded; the warning is there so callers can surface it.
type StudentResponse struct {
	models.Student
	SyncWarning string `json:"syncWarning,omitempty"`
}

// GetStudents lists all students sorted by name.
func GetStudents(c *gin.Context) {
	var students []models.Student
	if err := database.DB.Order("name asc").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent returns a single student by ID.
func GetStudent(c *gin.Context) {
	var student models.Student
	if err := database.DB.First(&student, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// CreateStudent registers a student and kicks off an initial Codeforces sync.
// A not-found handle rejects the creation outright; any other sync failure is
// reported as a warning while the student record is still created.
func CreateStudent(c *gin.Context) {
	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.CodeforcesHandle = utils.ExtractHandle(input.CodeforcesHandle)

	if field, msg := validateStudentInput(&input, true); field != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "field": field})
		return
	}

	var existing models.Student
	err := database.DB.
		Where("email = ? OR codeforces_handle = ?", input.Email, input.CodeforcesHandle).
		First(&existing).Error
	if err == nil {
		field := "email"
		if existing.CodeforcesHandle == input.CodeforcesHandle && existing.Email != input.Email {
			field = "codeforcesHandle"
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Student with this email or Codeforces handle already exists",
			"field": field,
		})
		return
	}

	student := models.Student{
		ID:               utils.NewUUID(),
		Name:             input.Name,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		CodeforcesHandle: input.CodeforcesHandle,
		LastDataUpdate:   time.Now(),
	}
	if err := database.DB.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}

	resp := StudentResponse{Student: student}

	// Initial sync is best-effort: a transient Codeforces failure must not
	// undo the registration. An unknown handle does reject it.
	if err := syncService.SyncStudent(c.Request.Context(), student.ID, student.CodeforcesHandle); err != nil {
		if errors.Is(err, services.ErrHandleNotFound) {
			database.DB.Delete(&models.Student{}, "id = ?", student.ID)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Codeforces user %q not found", student.CodeforcesHandle),
				"field": "codeforcesHandle",
			})
			return
		}
		logger.Warn().Err(err).Str("handle", student.CodeforcesHandle).Msg("Initial sync failed")
		resp.SyncWarning = err.Error()
	}

	database.DB.First(&resp.Student, "id = ?", student.ID)
	c.JSON(http.StatusCreated, resp)
}

// UpdateStudent edits profile fields. A changed handle triggers a best-effort
// re-sync, reported via syncWarning on failure.
func UpdateStudent(c *gin.Context) {
	studentID := c.Param("id")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.CodeforcesHandle = utils.ExtractHandle(input.CodeforcesHandle)

	if field, msg := validateStudentInput(&input, false); field != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "field": field})
		return
	}

	// Duplicate check excludes the student being edited.
	if input.Email != "" || input.CodeforcesHandle != "" {
		query := database.DB.Where("id <> ?", studentID)
		switch {
		case input.Email != "" && input.CodeforcesHandle != "":
			query = query.Where("email = ? OR codeforces_handle = ?", input.Email, input.CodeforcesHandle)
		case input.Email != "":
			query = query.Where("email = ?", input.Email)
		default:
			query = query.Where("codeforces_handle = ?", input.CodeforcesHandle)
		}
		var other models.Student
		if err := query.First(&other).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Email or Codeforces handle already in use by another student",
			})
			return
		}
	}

	handleChanged := input.CodeforcesHandle != "" && input.CodeforcesHandle != student.CodeforcesHandle

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Email != "" {
		updates["email"] = input.Email
	}
	if input.PhoneNumber != "" {
		updates["phone_number"] = input.PhoneNumber
	}
	if input.CodeforcesHandle != "" {
		updates["codeforces_handle"] = input.CodeforcesHandle
	}
	if input.DisableReminders != nil {
		updates["disable_reminders"] = *input.DisableReminders
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&student).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
			return
		}
	}

	resp := StudentResponse{}
	if handleChanged {
		if err := syncService.SyncStudent(c.Request.Context(), studentID, input.CodeforcesHandle); err != nil {
			logger.Warn().Err(err).Str("handle", input.CodeforcesHandle).Msg("Re-sync after handle change failed")
			resp.SyncWarning = err.Error()
		}
	}

	database.DB.First(&resp.Student, "id = ?", studentID)
	c.JSON(http.StatusOK, resp)
}

// DeleteStudent removes the student and their snapshot in one transaction so
// no orphaned snapshot can survive.
func DeleteStudent(c *gin.Context) {
	studentID := c.Param("id")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).Delete(&models.CodeforcesData{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Student{}, "id = ?", studentID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Student deleted successfully"})
}

// ResetReminderCount zeroes the reminder counter so the student becomes
// eligible for reminders again.
func ResetReminderCount(c *gin.Context) {
	studentID := c.Param("id")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	err := database.DB.Model(&student).Updates(map[string]interface{}{
		"reminders_sent":     0,
		"last_reminder_date": nil,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset reminder count"})
		return
	}

	database.DB.First(&student, "id = ?", studentID)
	c.JSON(http.StatusOK, student)
}

// ToggleReminders flips the disableReminders flag.
func ToggleReminders(c *gin.Context) {
	studentID := c.Param("id")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if err := database.DB.Model(&student).Update("disable_reminders", !student.DisableReminders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle reminders status"})
		return
	}

	database.DB.First(&student, "id = ?", studentID)
	c.JSON(http.StatusOK, student)
}

// ExportStudentsCSV downloads the full roster as CSV.
func ExportStudentsCSV(c *gin.Context) {
	var students []models.Student
	if err := database.DB.Order("name asc").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export students"})
		return
	}
	if len(students) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No students found"})
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"Name", "Email", "Phone Number", "Codeforces Handle",
		"Current Rating", "Max Rating", "Last Updated", "Reminders Disabled", "Reminders Sent",
	})
	for _, s := range students {
		_ = w.Write([]string{
			s.Name,
			s.Email,
			s.PhoneNumber,
			s.CodeforcesHandle,
			fmt.Sprintf("%d", s.CurrentRating),
			fmt.Sprintf("%d", s.MaxRating),
			s.LastDataUpdate.Format(time.RFC3339),
			fmt.Sprintf("%t", s.DisableReminders),
			fmt.Sprintf("%d", s.RemindersSent),
		})
	}
	w.Flush()

	c.Header("Content-Disposition", "attachment; filename=students.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// validateStudentInput checks required fields (on create) and formats.
// Returns the offending field name and a message, or "" when valid.
func validateStudentInput(input *StudentInput, required bool) (string, string) {
	if required {
		if input.Name == "" {
			return "name", "Name is required"
		}
		if input.Email == "" {
			return "email", "Email is required"
		}
		if input.CodeforcesHandle == "" {
			return "codeforcesHandle", "Codeforces handle is required"
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return "email", "Please provide a valid email address"
	}
	return "", ""
}
