package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
	"github.com/itzRohit45/Student-Progress-Management/pkg/utils"
	"gorm.io/gorm"
)

// SyncReport tallies a bulk sync run.
type SyncReport struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// SyncService pulls a student's Codeforces activity and persists the
// aggregated snapshot. One instance is shared by the HTTP layer and the cron
// job.
type SyncService struct {
	CF CodeforcesAPI

	// Gap inserted before each student in a bulk run, to bound the overall
	// request rate against Codeforces. Tests set it to zero.
	StudentDelay time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSyncService(cf CodeforcesAPI) *SyncService {
	return &SyncService{
		CF:           cf,
		StudentDelay: 2 * time.Second,
		locks:        make(map[string]*sync.Mutex),
	}
}

// studentLock serializes syncs per student so a manual refresh racing the
// batch cannot interleave two snapshot replaces for the same row.
func (s *SyncService) studentLock(studentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[studentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[studentID] = lock
	}
	return lock
}

// SyncStudent fetches, aggregates and persists one student's activity.
// On ErrHandleNotFound nothing is written: the existing snapshot and rating
// fields stay as they were.
func (s *SyncService) SyncStudent(ctx context.Context, studentID, handle string) error {
	lock := s.studentLock(studentID)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.CF.UserExists(ctx, handle)
	if err != nil {
		return fmt.Errorf("verify handle %q: %w", handle, err)
	}
	if !exists {
		return fmt.Errorf("handle %q: %w", handle, ErrHandleNotFound)
	}

	if _, err := s.CF.FetchUserInfo(ctx, handle); err != nil {
		return fmt.Errorf("fetch profile for %q: %w", handle, err)
	}

	// Rating history and submissions hit independent endpoints, so they may
	// run concurrently; the client's limiter still paces the wire calls.
	var (
		wg        sync.WaitGroup
		ratings   []CFRatingChange
		subs      []CFSubmission
		ratingErr error
		subErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ratings, ratingErr = s.CF.FetchUserRating(ctx, handle)
	}()
	go func() {
		defer wg.Done()
		subs, subErr = s.CF.FetchUserSubmissions(ctx, handle)
	}()
	wg.Wait()

	if ratingErr != nil {
		return fmt.Errorf("fetch rating history for %q: %w", handle, ratingErr)
	}
	if subErr != nil {
		return fmt.Errorf("fetch submissions for %q: %w", handle, subErr)
	}

	agg := BuildSnapshot(handle, ratings, subs)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Whole-snapshot replace: delete-then-insert so a reader can never
		// observe fields from two different sync passes.
		if err := tx.Where("student_id = ?", studentID).Delete(&models.CodeforcesData{}).Error; err != nil {
			return err
		}

		data := models.CodeforcesData{
			ID:                 utils.NewUUID(),
			StudentID:          studentID,
			Handle:             handle,
			Contests:           agg.Contests,
			Submissions:        agg.Submissions,
			TotalSolved:        agg.TotalSolved,
			SolvedByRating:     agg.SolvedByRating,
			LastSubmissionDate: agg.LastSubmissionDate,
		}
		if err := tx.Create(&data).Error; err != nil {
			return err
		}

		// A student with no rated contests keeps their default ratings and
		// lastDataUpdate untouched.
		if len(agg.Contests) == 0 {
			return nil
		}

		current, max := deriveRatings(agg.Contests)
		return tx.Model(&models.Student{}).Where("id = ?", studentID).Updates(map[string]interface{}{
			"current_rating":   current,
			"max_rating":       max,
			"last_data_update": time.Now(),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("persist snapshot for %q: %w", handle, err)
	}

	invalidateStudentCache(studentID)

	logger.Info().
		Str("student_id", studentID).
		Str("handle", handle).
		Int("contests", len(agg.Contests)).
		Int("submissions", len(agg.Submissions)).
		Int("total_solved", agg.TotalSolved).
		Msg("Synced Codeforces data")

	return nil
}

// deriveRatings returns the newRating of the most recent contest and the
// maximum newRating over all contests. The stable date-descending sort makes
// tie-breaking consistent across runs.
func deriveRatings(contests models.ContestList) (current, max int) {
	sorted := make(models.ContestList, len(contests))
	copy(sorted, contests)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	current = sorted[0].NewRating
	for _, c := range contests {
		if c.NewRating > max {
			max = c.NewRating
		}
	}
	return current, max
}

// SyncAll refreshes every tracked student sequentially. One student's failure
// is counted and the batch moves on; it never aborts the run.
func (s *SyncService) SyncAll(ctx context.Context) SyncReport {
	var report SyncReport

	var students []models.Student
	if err := database.DB.Order("name asc").Find(&students).Error; err != nil {
		logger.Error().Err(err).Msg("Bulk sync: failed to list students")
		return report
	}

	logger.Info().Int("students", len(students)).Msg("Starting Codeforces data sync")

	for _, student := range students {
		// Pace the batch against the Codeforces rate limit.
		if s.StudentDelay > 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Msg("Bulk sync cancelled")
				return report
			case <-time.After(s.StudentDelay):
			}
		}

		if err := s.SyncStudent(ctx, student.ID, student.CodeforcesHandle); err != nil {
			logger.Error().
				Err(err).
				Str("student_id", student.ID).
				Str("name", student.Name).
				Msg("Bulk sync: student failed")
			report.Errors++
			continue
		}
		report.Success++
	}

	logger.Info().
		Int("success", report.Success).
		Int("errors", report.Errors).
		Msg("Codeforces sync completed")

	return report
}
