package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/handlers"
)

func RegisterCodeforcesRoutes(r gin.IRouter) {
	cf := r.Group("/codeforces")
	{
		cf.GET("/student/:id/contests", handlers.GetStudentContestHistory)
		cf.GET("/student/:id/problems", handlers.GetProblemSolvingData)
		cf.POST("/student/:id/refresh", handlers.RefreshStudentData)
	}
}
