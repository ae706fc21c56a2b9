package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/stretchr/testify/assert"
)

var checkTime = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestInactivityService(m Mailer) *InactivityService {
	svc := NewInactivityService(m)
	svc.Now = func() time.Time { return checkTime }
	return svc
}

func activeSubmissions(at time.Time) models.SubmissionList {
	return models.SubmissionList{{
		SubmissionID:   1,
		ContestID:      1,
		ProblemIndex:   "A",
		Verdict:        "OK",
		SubmissionDate: at,
	}}
}

func TestCheckInactiveStudentsSendsReminder(t *testing.T) {
	setupTestDB(t)

	student := createTestStudent(t, "Quiet", "quiet@example.com", "quiet_cf")
	last := checkTime.AddDate(0, 0, -10) // past the default 7-day threshold
	createTestSnapshot(t, student.ID, models.CodeforcesData{
		Handle:             "quiet_cf",
		Submissions:        activeSubmissions(last),
		LastSubmissionDate: timePtr(last),
	})

	mailer := &fakeMailer{}
	sent, err := newTestInactivityService(mailer).CheckInactiveStudents(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"quiet@example.com"}, mailer.sent)

	var after models.Student
	database.DB.First(&after, "id = ?", student.ID)
	assert.Equal(t, 1, after.RemindersSent)
	assert.NotNil(t, after.LastReminderDate)
}

func TestCheckInactiveStudentsSkipsActive(t *testing.T) {
	setupTestDB(t)

	student := createTestStudent(t, "Busy", "busy@example.com", "busy_cf")
	last := checkTime.AddDate(0, 0, -2) // within the window
	createTestSnapshot(t, student.ID, models.CodeforcesData{
		Handle:             "busy_cf",
		Submissions:        activeSubmissions(last),
		LastSubmissionDate: timePtr(last),
	})

	mailer := &fakeMailer{}
	sent, err := newTestInactivityService(mailer).CheckInactiveStudents(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, mailer.sent)
}

func TestCheckInactiveStudentsNeverActiveExemption(t *testing.T) {
	setupTestDB(t)

	// Created long ago, reminders enabled, but has never submitted anything.
	student := createTestStudent(t, "Newbie", "new@example.com", "new_cf")
	createTestSnapshot(t, student.ID, models.CodeforcesData{Handle: "new_cf"})

	// And one with no snapshot at all.
	createTestStudent(t, "Unknown", "unknown@example.com", "unknown_cf")

	mailer := &fakeMailer{}
	sent, err := newTestInactivityService(mailer).CheckInactiveStudents(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, mailer.sent)
}

func TestCheckInactiveStudentsRespectsReminderCap(t *testing.T) {
	setupTestDB(t)

	student := createTestStudent(t, "Capped", "capped@example.com", "capped_cf")
	database.DB.Model(&student).Update("reminders_sent", 3)
	last := checkTime.AddDate(0, 0, -100)
	createTestSnapshot(t, student.ID, models.CodeforcesData{
		Handle:             "capped_cf",
		Submissions:        activeSubmissions(last),
		LastSubmissionDate: timePtr(last),
	})

	mailer := &fakeMailer{}
	sent, err := newTestInactivityService(mailer).CheckInactiveStudents(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, sent)
}

func TestCheckInactiveStudentsRespectsDisableFlag(t *testing.T) {
	setupTestDB(t)

	student := createTestStudent(t, "OptedOut", "out@example.com", "out_cf")
	database.DB.Model(&student).Update("disable_reminders", true)
	last := checkTime.AddDate(0, 0, -30)
	createTestSnapshot(t, student.ID, models.CodeforcesData{
		Handle:             "out_cf",
		Submissions:        activeSubmissions(last),
		LastSubmissionDate: timePtr(last),
	})

	mailer := &fakeMailer{}
	sent, err := newTestInactivityService(mailer).CheckInactiveStudents(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, sent)
}

func TestCheckInactiveStudentsFailedSendLeavesStateUntouched(t *testing.T) {
	setupTestDB(t)

	student := createTestStudent(t, "Unlucky", "unlucky@example.com", "unlucky_cf")
	last := checkTime.AddDate(0, 0, -30)
	createTestSnapshot(t, student.ID, models.CodeforcesData{
		Handle:             "unlucky_cf",
		Submissions:        activeSubmissions(last),
		LastSubmissionDate: timePtr(last),
	})

	mailer := &fakeMailer{sendErr: errors.New("smtp unavailable")}
	sent, err := newTestInactivityService(mailer).CheckInactiveStudents(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, sent)

	// Untouched counters mean the reminder is retried next cycle.
	var after models.Student
	database.DB.First(&after, "id = ?", student.ID)
	assert.Zero(t, after.RemindersSent)
	assert.Nil(t, after.LastReminderDate)
}

func TestCheckInactiveStudentsReadsConfigEachRun(t *testing.T) {
	setupTestDB(t)

	student := createTestStudent(t, "Edge", "edge@example.com", "edge_cf")
	last := checkTime.AddDate(0, 0, -10)
	createTestSnapshot(t, student.ID, models.CodeforcesData{
		Handle:             "edge_cf",
		Submissions:        activeSubmissions(last),
		LastSubmissionDate: timePtr(last),
	})

	// With a 30-day threshold the 10-day gap is fine.
	_, err := SetConfig(ConfigInactivityDays, 30, "")
	assert.NoError(t, err)

	mailer := &fakeMailer{}
	svc := newTestInactivityService(mailer)

	sent, err := svc.CheckInactiveStudents(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, sent)

	// Tighten the threshold; next run picks it up without a restart.
	_, err = SetConfig(ConfigInactivityDays, 7, "")
	assert.NoError(t, err)

	sent, err = svc.CheckInactiveStudents(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
}
