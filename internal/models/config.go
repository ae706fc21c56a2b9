package models

import (
	"time"

	"gorm.io/datatypes"
)

// Config is a name-keyed runtime setting. Value is opaque JSON so settings can
// be strings (cron expressions) or numbers (day counts) without schema churn.
type Config struct {
	Name        string         `gorm:"primaryKey" json:"name"`
	Value       datatypes.JSON `json:"value"`
	Description string         `json:"description"`
	LastUpdated time.Time      `json:"lastUpdated"`
}
