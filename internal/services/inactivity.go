package services

import (
	"context"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
)

// InactivityService finds students who went quiet and asks the mailer to nudge
// them. Reminder counters only move after a confirmed send, so a failed send
// is retried on the next cycle rather than silently marked done.
type InactivityService struct {
	Mailer Mailer
	Now    func() time.Time
}

func NewInactivityService(mailer Mailer) *InactivityService {
	return &InactivityService{
		Mailer: mailer,
		Now:    time.Now,
	}
}

// CheckInactiveStudents runs one inactivity pass and returns how many
// reminders went out. Thresholds are read fresh from the Config table each
// run.
func (s *InactivityService) CheckInactiveStudents(ctx context.Context) (int, error) {
	thresholdDays := GetConfigInt(ConfigInactivityDays, 7)
	maxReminders := GetConfigInt(ConfigMaxReminders, 3)
	cutoff := s.Now().AddDate(0, 0, -thresholdDays)

	logger.Info().
		Int("threshold_days", thresholdDays).
		Int("max_reminders", maxReminders).
		Msg("Checking for inactive students")

	var students []models.Student
	if err := database.DB.Where("disable_reminders = ?", false).Find(&students).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, student := range students {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		if student.RemindersSent >= maxReminders {
			continue
		}

		var data models.CodeforcesData
		if err := database.DB.Where("student_id = ?", student.ID).First(&data).Error; err != nil {
			// No snapshot yet: nothing to be inactive from.
			continue
		}

		// A student who has never submitted is "never active", not inactive.
		// Reminding brand-new students would only confuse them.
		if data.LastSubmissionDate == nil || len(data.Submissions) == 0 {
			logger.Debug().
				Str("name", student.Name).
				Msg("Skipping student with no submission data")
			continue
		}

		if !data.LastSubmissionDate.Before(cutoff) {
			continue
		}

		if err := s.Mailer.SendInactivityReminder(student, *data.LastSubmissionDate); err != nil {
			logger.Error().
				Err(err).
				Str("email", student.Email).
				Msg("Failed to send inactivity reminder")
			continue
		}

		now := s.Now()
		err := database.DB.Model(&models.Student{}).Where("id = ?", student.ID).Updates(map[string]interface{}{
			"reminders_sent":     student.RemindersSent + 1,
			"last_reminder_date": now,
		}).Error
		if err != nil {
			// The mail went out but the counter didn't move; the student may
			// get one extra reminder next cycle. Accepted over under-sending.
			logger.Error().Err(err).Str("student_id", student.ID).Msg("Failed to record reminder")
			continue
		}

		sent++
		logger.Info().
			Str("email", student.Email).
			Time("last_submission", *data.LastSubmissionDate).
			Msg("Inactivity reminder sent")
	}

	logger.Info().Int("reminders_sent", sent).Msg("Inactivity check completed")
	return sent, nil
}
