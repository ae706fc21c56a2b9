package handlers

import "github.com/itzRohit45/Student-Progress-Management/internal/services"

var (
	syncService *services.SyncService
	cronService *services.CronService
)

// Init wires the shared service instances into the handler package. Called
// once from main before routes are registered.
func Init(sync *services.SyncService, cron *services.CronService) {
	syncService = sync
	cronService = cron
}
