package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CronService owns the single recurring sync trigger. The schedule is a
// standard 5-field cron expression stored in the Config table; rescheduling
// swaps the trigger atomically so there is never a moment with two live jobs.
type CronService struct {
	mu       sync.Mutex
	cron     *cron.Cron
	entryID  cron.EntryID
	schedule string

	sync       *SyncService
	inactivity *InactivityService
}

func NewCronService(syncSvc *SyncService, inactivity *InactivityService) *CronService {
	return &CronService{
		cron:       cron.New(),
		sync:       syncSvc,
		inactivity: inactivity,
	}
}

// Start arms the recurring trigger with the given schedule.
func (c *CronService) Start(schedule string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arm(schedule)
}

// Reschedule stops the current trigger and installs a new one under the same
// lock. An invalid expression leaves the existing trigger in place.
func (c *CronService) Reschedule(schedule string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arm(schedule)
}

func (c *CronService) arm(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	if c.entryID != 0 {
		c.cron.Remove(c.entryID)
	}

	id, err := c.cron.AddFunc(schedule, c.runOnce)
	if err != nil {
		return fmt.Errorf("schedule sync job: %w", err)
	}
	c.entryID = id
	c.schedule = schedule
	c.cron.Start()

	logger.Info().Str("schedule", schedule).Msg("Codeforces sync job scheduled")
	return nil
}

// Stop removes the trigger and halts the cron runner.
func (c *CronService) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entryID != 0 {
		c.cron.Remove(c.entryID)
		c.entryID = 0
	}
	c.cron.Stop()
}

// Schedule returns the currently armed expression.
func (c *CronService) Schedule() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schedule
}

// runOnce is one scheduled cycle: refresh every student, then check for
// inactive ones.
func (c *CronService) runOnce() {
	logger.Info().Msg("Running scheduled Codeforces data sync")
	ctx := context.Background()

	report := c.sync.SyncAll(ctx)

	sent, err := c.inactivity.CheckInactiveStudents(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Inactivity check failed")
	}

	logger.Info().
		Int("success", report.Success).
		Int("errors", report.Errors).
		Int("reminders_sent", sent).
		Msg("Scheduled sync completed")
}

// ValidateSchedule reports whether expr is a valid standard cron expression.
func ValidateSchedule(expr string) bool {
	_, err := cron.ParseStandard(expr)
	return err == nil
}

// DescribeSchedule renders a 5-field cron expression as a human-readable
// phrase for the settings UI. Unrecognized shapes fall back to the raw
// expression.
func DescribeSchedule(expr string) string {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return expr
	}
	min, hour, dom, mon, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	if strings.HasPrefix(min, "*/") && hour == "*" && dom == "*" && mon == "*" && dow == "*" {
		return fmt.Sprintf("every %s minutes", min[2:])
	}

	m, merr := strconv.Atoi(min)
	h, herr := strconv.Atoi(hour)
	if merr != nil || herr != nil {
		return expr
	}
	at := fmt.Sprintf("%02d:%02d", h, m)

	switch {
	case dom == "*" && mon == "*" && dow == "*":
		return fmt.Sprintf("daily at %s", at)
	case dom == "*" && mon == "*" && dow != "*":
		return fmt.Sprintf("weekly on day %s at %s", dow, at)
	case dom != "*" && mon == "*" && dow == "*":
		return fmt.Sprintf("monthly on day %s at %s", dom, at)
	default:
		return expr
	}
}
