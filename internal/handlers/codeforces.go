package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/internal/services"
)

// timeRangeDays parses the optional ?timeRange=N query (days). 0 means all.
func timeRangeDays(c *gin.Context) int {
	raw := c.Query("timeRange")
	if raw == "" {
		return 0
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0
	}
	return days
}

// GetStudentContestHistory returns the student's contests, newest first,
// optionally limited to the last N days.
func GetStudentContestHistory(c *gin.Context) {
	studentID := c.Param("id")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	history, err := services.GetContestHistory(studentID, timeRangeDays(c))
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No Codeforces data found for this student"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contest history"})
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetProblemSolvingData returns the aggregated problem-solving stats.
func GetProblemSolvingData(c *gin.Context) {
	studentID := c.Param("id")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	stats, err := services.GetProblemStats(studentID, timeRangeDays(c))
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No Codeforces data found for this student"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch problem solving data"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RefreshStudentData manually re-syncs one student and returns the updated
// record.
func RefreshStudentData(c *gin.Context) {
	studentID := c.Param("id")

	var student models.Student
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if err := syncService.SyncStudent(c.Request.Context(), studentID, student.CodeforcesHandle); err != nil {
		if errors.Is(err, services.ErrHandleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Codeforces handle not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh Codeforces data"})
		return
	}

	database.DB.First(&student, "id = ?", studentID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Codeforces data refreshed successfully",
		"student": student,
	})
}
