package seeds

import (
	"encoding/json"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/config"
	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/internal/services"
	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
)

// SeedDefaultConfigs inserts the runtime settings the scheduler and
// inactivity checker rely on. Existing rows are left alone so admin edits
// survive restarts.
func SeedDefaultConfigs() {
	defaults := []struct {
		Name        string
		Value       interface{}
		Description string
	}{
		{
			Name:        services.ConfigSyncSchedule,
			Value:       config.AppConfig.SyncSchedule,
			Description: "Cron schedule for Codeforces data synchronization",
		},
		{
			Name:        services.ConfigInactivityDays,
			Value:       7,
			Description: "Days of inactivity before sending a reminder",
		},
		{
			Name:        services.ConfigMaxReminders,
			Value:       3,
			Description: "Maximum number of inactivity reminders to send to a student",
		},
	}

	for _, d := range defaults {
		var existing models.Config
		if err := database.DB.Where("name = ?", d.Name).First(&existing).Error; err == nil {
			continue
		}

		raw, err := json.Marshal(d.Value)
		if err != nil {
			logger.Error().Err(err).Str("name", d.Name).Msg("Failed to encode default config")
			continue
		}

		cfg := models.Config{
			Name:        d.Name,
			Value:       raw,
			Description: d.Description,
			LastUpdated: time.Now(),
		}
		if err := database.DB.Create(&cfg).Error; err != nil {
			logger.Error().Err(err).Str("name", d.Name).Msg("Failed to seed default config")
		}
	}

	logger.Info().Msg("Default configurations initialized")
}
