package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStudentContestHistory(t *testing.T) {
	router, _ := setupRouter(t, &fakeCF{})
	student := seedStudent(t, "Racer", "racer@example.com", "racer_cf")

	recent := time.Now().AddDate(0, 0, -3)
	ancient := time.Now().AddDate(0, -6, 0)
	seedSnapshot(t, student.ID, models.CodeforcesData{
		Handle: "racer_cf",
		Contests: models.ContestList{
			{ContestID: 1, ContestName: "Ancient", Date: ancient},
			{ContestID: 2, ContestName: "Recent", Date: recent},
		},
	})

	rec := doJSON(router, http.MethodGet, "/api/codeforces/student/"+student.ID+"/contests", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var history services.ContestHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Contests, 2)
	assert.Equal(t, "Recent", history.Contests[0].ContestName) // newest first

	// window it down to the last 30 days
	rec = doJSON(router, http.MethodGet, "/api/codeforces/student/"+student.ID+"/contests?timeRange=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Contests, 1)
	assert.Equal(t, "Recent", history.Contests[0].ContestName)
}

func TestGetStudentContestHistoryNoData(t *testing.T) {
	router, _ := setupRouter(t, &fakeCF{})
	student := seedStudent(t, "Blank", "blank@example.com", "blank_cf")

	rec := doJSON(router, http.MethodGet, "/api/codeforces/student/"+student.ID+"/contests", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/codeforces/student/missing/contests", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProblemSolvingData(t *testing.T) {
	router, _ := setupRouter(t, &fakeCF{})
	student := seedStudent(t, "Solver", "solver@example.com", "solver_cf")

	at := time.Now().AddDate(0, 0, -1)
	seedSnapshot(t, student.ID, models.CodeforcesData{
		Handle: "solver_cf",
		Submissions: models.SubmissionList{
			{SubmissionID: 1, ContestID: 5, ProblemIndex: "A", ProblemName: "Warmup", ProblemRating: intPtr(900), Verdict: "OK", SubmissionDate: at},
		},
		TotalSolved:        1,
		LastSubmissionDate: timePtr(at),
	})

	rec := doJSON(router, http.MethodGet, "/api/codeforces/student/"+student.ID+"/problems", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats services.ProblemStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "solver_cf", stats.Handle)
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, "Warmup", stats.MostDifficultProblem.Name)
	assert.Equal(t, 1, stats.SolvedByRating[900])
}

func TestGetProblemSolvingDataNoData(t *testing.T) {
	router, _ := setupRouter(t, &fakeCF{})
	student := seedStudent(t, "Fresh", "fresh@example.com", "fresh_cf")

	rec := doJSON(router, http.MethodGet, "/api/codeforces/student/"+student.ID+"/problems", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshStudentData(t *testing.T) {
	cf := &fakeCF{
		ratingFn: func(string) ([]services.CFRatingChange, error) {
			return []services.CFRatingChange{{
				ContestID:               1,
				ContestName:             "Round 1",
				OldRating:               1400,
				NewRating:               1550,
				RatingUpdateTimeSeconds: time.Now().Unix(),
			}}, nil
		},
	}
	router, _ := setupRouter(t, cf)
	student := seedStudent(t, "Refresher", "refresh@example.com", "refresh_cf")

	rec := doJSON(router, http.MethodPost, "/api/codeforces/student/"+student.ID+"/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var after models.Student
	database.DB.First(&after, "id = ?", student.ID)
	assert.Equal(t, 1550, after.CurrentRating)
	assert.Equal(t, 1550, after.MaxRating)
}

func TestRefreshStudentDataUnknownHandle(t *testing.T) {
	cf := &fakeCF{
		existsFn: func(string) (bool, error) { return false, nil },
	}
	router, _ := setupRouter(t, cf)
	student := seedStudent(t, "Gone", "gone@example.com", "gone_cf")

	rec := doJSON(router, http.MethodPost, "/api/codeforces/student/"+student.ID+"/refresh", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshStudentDataUpstreamFailure(t *testing.T) {
	cf := &fakeCF{
		existsFn: func(string) (bool, error) { return false, errors.New("503 from codeforces") },
	}
	router, _ := setupRouter(t, cf)
	student := seedStudent(t, "Unlucky", "unlucky@example.com", "unlucky_cf")

	rec := doJSON(router, http.MethodPost, "/api/codeforces/student/"+student.ID+"/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
