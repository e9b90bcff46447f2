package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/models"
	"github.com/pakproperty/pakproperty/internal/tasks"
)

// StartSweepScheduler runs a periodic check (every minute) for the
// maintenance sweep configured in settings
func StartSweepScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueSweep(client, db, logger)

	for range ticker.C {
		checkAndEnqueueSweep(client, db, logger)
	}
}

func checkAndEnqueueSweep(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	// Load the singleton settings row
	var settings models.Settings
	err := db.First(&settings).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No settings found - skipping sweep check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query settings for sweep")
		return
	}

	if settings.SweepSchedule == "" {
		logger.Debug().Msg("No sweep schedule configured")
		return
	}

	if settings.NextSweepAt != nil && settings.NextSweepAt.After(time.Now()) {
		logger.Debug().
			Time("next_sweep_at", *settings.NextSweepAt).
			Msg("Sweep not due yet")
		return
	}

	schedule, err := cron.ParseStandard(settings.SweepSchedule)
	if err != nil {
		logger.Error().
			Err(err).
			Str("sweep_schedule", settings.SweepSchedule).
			Msg("Invalid sweep schedule")
		return
	}

	if _, err := client.Enqueue(tasks.NewMaintenanceSweepTask(), asynq.Queue("low")); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue maintenance sweep")
		return
	}

	now := time.Now()
	next := schedule.Next(now)
	if err := db.Model(&settings).
		Updates(map[string]interface{}{"last_sweep_at": now, "next_sweep_at": next}).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to record sweep timestamps")
		return
	}

	logger.Info().
		Time("next_sweep_at", next).
		Msg("Maintenance sweep enqueued")
}
