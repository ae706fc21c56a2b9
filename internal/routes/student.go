package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/handlers"
)

func RegisterStudentRoutes(r gin.IRouter) {
	students := r.Group("/students")
	{
		students.GET("", handlers.GetStudents)
		students.GET("/export-csv", handlers.ExportStudentsCSV)
		students.GET("/:id", handlers.GetStudent)
		students.POST("", handlers.CreateStudent)
		students.PUT("/:id", handlers.UpdateStudent)
		students.DELETE("/:id", handlers.DeleteStudent)
		students.POST("/:id/reset-reminder", handlers.ResetReminderCount)
		students.POST("/:id/toggle-reminders", handlers.ToggleReminders)
	}
}
