package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/database"
	"github.com/itzRohit45/Student-Progress-Management/internal/models"
	"github.com/itzRohit45/Student-Progress-Management/internal/services"
)

// GetAllConfigs lists every runtime setting.
func GetAllConfigs(c *gin.Context) {
	var configs []models.Config
	if err := database.DB.Order("name asc").Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch configs"})
		return
	}
	c.JSON(http.StatusOK, configs)
}

// GetConfig returns one setting by name.
func GetConfig(c *gin.Context) {
	var cfg models.Config
	if err := database.DB.Where("name = ?", c.Param("name")).First(&cfg).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Configuration not found"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type configInput struct {
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
}

// UpdateConfig upserts a setting. Writing the sync-schedule setting also
// re-arms the cron trigger, synchronously with the write: an invalid
// expression is rejected before anything is stored.
func UpdateConfig(c *gin.Context) {
	name := c.Param("name")

	var input configInput
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required", "field": "value"})
		return
	}

	var value interface{}
	if err := json.Unmarshal(input.Value, &value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Value must be valid JSON", "field": "value"})
		return
	}

	if name == services.ConfigSyncSchedule {
		expr, ok := value.(string)
		if !ok || !services.ValidateSchedule(expr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Value must be a valid cron schedule expression",
				"field": "value",
			})
			return
		}
	}

	cfg, err := services.SetConfig(name, value, input.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update config"})
		return
	}

	if name == services.ConfigSyncSchedule {
		if err := cronService.Reschedule(value.(string)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Config saved but rescheduling failed"})
			return
		}
	}

	c.JSON(http.StatusOK, cfg)
}
