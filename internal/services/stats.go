package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
)

// ErrNoData means the student exists but has no snapshot yet.
var ErrNoData = errors.New("no codeforces data for this student")

const statsCacheTTL = 5 * time.Minute

// ProblemRef points at a single problem, used for "hardest solved".
type ProblemRef struct {
	Rating       int    `json:"rating"`
	Name         string `json:"name"`
	ProblemIndex string `json:"problemIndex"`
	ContestID    int    `json:"contestId"`
}

// ProblemStats is the problem-solving read model for one student, scoped to
// an optional trailing window of days.
type ProblemStats struct {
	Handle                string               `json:"handle"`
	TimeRange             int                  `json:"timeRange"`
	TotalSolved           int                  `json:"totalSolved"`
	AverageRating         int                  `json:"averageRating"`
	AverageProblemsPerDay float64              `json:"averageProblemsPerDay"`
	MostDifficultProblem  ProblemRef           `json:"mostDifficultProblem"`
	SolvedByRating        models.RatingBuckets `json:"solvedByRating"`
	Heatmap               map[string]int       `json:"heatmapData"`
	LastSubmissionDate    *time.Time           `json:"lastSubmissionDate"`
}

// ContestHistory is the filtered, date-descending contest list.
type ContestHistory struct {
	Handle   string             `json:"handle"`
	Contests models.ContestList `json:"contests"`
}

func loadSnapshot(studentID string) (*models.CodeforcesData, error) {
	var data models.CodeforcesData
	if err := database.DB.Where("student_id = ?", studentID).First(&data).Error; err != nil {
		return nil, ErrNoData
	}
	return &data, nil
}

// GetContestHistory returns the student's contests sorted newest-first,
// optionally limited to the last maxAgeDays days (0 = all).
func GetContestHistory(studentID string, maxAgeDays int) (*ContestHistory, error) {
	cacheKey := fmt.Sprintf("cf:contests:%s:%d", studentID, maxAgeDays)
	var cached ContestHistory
	if err := database.CacheGet(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	data, err := loadSnapshot(studentID)
	if err != nil {
		return nil, err
	}

	contests := make(models.ContestList, 0, len(data.Contests))
	if maxAgeDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
		for _, c := range data.Contests {
			if !c.Date.Before(cutoff) {
				contests = append(contests, c)
			}
		}
	} else {
		contests = append(contests, data.Contests...)
	}

	sort.SliceStable(contests, func(i, j int) bool {
		return contests[i].Date.After(contests[j].Date)
	})

	history := &ContestHistory{Handle: data.Handle, Contests: contests}
	_ = database.CacheSet(cacheKey, history, statsCacheTTL)
	return history, nil
}

// GetProblemStats aggregates accepted submissions into the profile view:
// distinct solved count, rating averages, difficulty buckets, the hardest
// problem and a date->count heatmap.
func GetProblemStats(studentID string, maxAgeDays int) (*ProblemStats, error) {
	cacheKey := fmt.Sprintf("cf:stats:%s:%d", studentID, maxAgeDays)
	var cached ProblemStats
	if err := database.CacheGet(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	data, err := loadSnapshot(studentID)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if maxAgeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -maxAgeDays)
	}

	stats := &ProblemStats{
		Handle:             data.Handle,
		TimeRange:          maxAgeDays,
		SolvedByRating:     models.RatingBuckets{},
		Heatmap:            map[string]int{},
		LastSubmissionDate: data.LastSubmissionDate,
		MostDifficultProblem: ProblemRef{
			Name: "None",
		},
	}

	distinct := make(map[string]bool)
	totalRating := 0
	ratedCount := 0

	for _, sub := range data.Submissions {
		if sub.Verdict != "OK" {
			continue
		}
		if maxAgeDays > 0 && sub.SubmissionDate.Before(cutoff) {
			continue
		}

		distinct[problemKey(sub.ContestID, sub.ProblemIndex)] = true
		stats.Heatmap[sub.SubmissionDate.Format("2006-01-02")]++

		if sub.ProblemRating == nil {
			continue
		}
		r := *sub.ProblemRating

		// Strict greater-than keeps the first encountered on ties.
		if r > stats.MostDifficultProblem.Rating {
			stats.MostDifficultProblem = ProblemRef{
				Rating:       r,
				Name:         sub.ProblemName,
				ProblemIndex: sub.ProblemIndex,
				ContestID:    sub.ContestID,
			}
		}

		stats.SolvedByRating[(r/100)*100]++
		totalRating += r
		ratedCount++
	}

	stats.TotalSolved = len(distinct)

	if ratedCount > 0 {
		stats.AverageRating = int(math.Round(float64(totalRating) / float64(ratedCount)))
	}
	if activeDays := len(stats.Heatmap); activeDays > 0 {
		perDay := float64(stats.TotalSolved) / float64(activeDays)
		stats.AverageProblemsPerDay = math.Round(perDay*100) / 100
	}

	_ = database.CacheSet(cacheKey, stats, statsCacheTTL)
	return stats, nil
}

// invalidateStudentCache drops all cached read models for a student. Called
// after every successful sync.
func invalidateStudentCache(studentID string) {
	_ = database.CacheInvalidate(fmt.Sprintf("cf:contests:%s:*", studentID))
	_ = database.CacheInvalidate(fmt.Sprintf("cf:stats:%s:*", studentID))
}
