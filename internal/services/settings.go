package services

import (
	"encoding/json"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"gorm.io/gorm/clause"
)

// Runtime setting names. These live in the Config table and are re-read at
// the start of every scheduler and inactivity run, so edits apply on the next
// cycle without a restart.
const (
	ConfigSyncSchedule   = "CODEFORCES_SYNC_SCHEDULE"
	ConfigInactivityDays = "INACTIVITY_DAYS_THRESHOLD"
	ConfigMaxReminders   = "MAX_REMINDERS_PER_STUDENT"
)

// GetConfigString reads a string-valued setting, falling back when the row is
// missing or holds a non-string.
func GetConfigString(name, fallback string) string {
	var cfg models.Config
	if err := database.DB.Where("name = ?", name).First(&cfg).Error; err != nil {
		return fallback
	}
	var s string
	if err := json.Unmarshal(cfg.Value, &s); err != nil {
		return fallback
	}
	return s
}

// GetConfigInt reads a numeric setting. Accepts plain numbers and numeric
// strings, since admins edit these values by hand.
func GetConfigInt(name string, fallback int) int {
	var cfg models.Config
	if err := database.DB.Where("name = ?", name).First(&cfg).Error; err != nil {
		return fallback
	}

	var n float64
	if err := json.Unmarshal(cfg.Value, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(cfg.Value, &s); err == nil {
		var sn float64
		if err := json.Unmarshal([]byte(s), &sn); err == nil {
			return int(sn)
		}
	}
	return fallback
}

// SetConfig upserts a setting by name and returns the stored row.
func SetConfig(name string, value interface{}, description string) (*models.Config, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	cfg := models.Config{
		Name:        name,
		Value:       raw,
		Description: description,
		LastUpdated: time.Now(),
	}

	assignments := map[string]interface{}{
		"value":        cfg.Value,
		"last_updated": cfg.LastUpdated,
	}
	if description != "" {
		assignments["description"] = description
	}

	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&cfg).Error
	if err != nil {
		return nil, err
	}

	var stored models.Config
	if err := database.DB.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
