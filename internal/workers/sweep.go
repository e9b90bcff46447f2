package workers

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/models"
)

// HandleMaintenanceSweep expires featured listings whose window has passed
// and clears password reset tokens past their expiry
func HandleMaintenanceSweep(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	now := time.Now()

	featured := db.Model(&models.Property{}).
		Where("is_featured = ? AND featured_until IS NOT NULL AND featured_until < ?", true, now).
		Updates(map[string]interface{}{"is_featured": false, "featured_until": nil})
	if featured.Error != nil {
		logger.Error().Err(featured.Error).Msg("Failed to expire featured listings")
		return featured.Error
	}

	resets := db.Model(&models.User{}).
		Where("reset_token <> '' AND reset_token_expires IS NOT NULL AND reset_token_expires < ?", now).
		Updates(map[string]interface{}{"reset_token": "", "reset_token_expires": nil})
	if resets.Error != nil {
		logger.Error().Err(resets.Error).Msg("Failed to purge expired reset tokens")
		return resets.Error
	}

	logger.Info().
		Int64("featured_expired", featured.RowsAffected).
		Int64("reset_tokens_purged", resets.RowsAffected).
		Msg("Maintenance sweep complete")
	return nil
}
