package models

import "time"

// Student is a tracked learner. CurrentRating/MaxRating are derived from the
// latest Codeforces sync and are never edited directly.
type Student struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name             string `json:"name"`
	Email            string `gorm:"uniqueIndex" json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	CodeforcesHandle string `gorm:"uniqueIndex" json:"codeforcesHandle"`

	CurrentRating  int       `gorm:"default:0" json:"currentRating"`
	MaxRating      int       `gorm:"default:0" json:"maxRating"`
	LastDataUpdate time.Time `json:"lastDataUpdate"`

	// Inactivity reminder bookkeeping
	RemindersSent    int        `gorm:"default:0" json:"remindersSent"`
	LastReminderDate *time.Time `json:"lastReminderDate"`
	DisableReminders bool       `gorm:"default:false" json:"disableReminders"`
}
