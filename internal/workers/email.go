package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/models"
	"github.com/pakproperty/pakproperty/internal/tasks"
)

// HandleVerificationEmail renders and sends an email verification link
func HandleVerificationEmail(ctx context.Context, t *asynq.Task, db *gorm.DB, mailer Mailer, publicURL string, logger zerolog.Logger) error {
	payload, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}

	var user models.User
	if err := models.FindByID(db, payload.UserID, &user); err != nil {
		if err == gorm.ErrRecordNotFound {
			// User deleted before the task ran; nothing to do
			logger.Warn().Str("user_id", payload.UserID).Msg("Verification email skipped - user gone")
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.IsVerified || user.VerificationToken == "" {
		logger.Debug().Str("user_id", user.ID).Msg("Verification email skipped - nothing to verify")
		return nil
	}

	link := fmt.Sprintf("%s/api/auth/verify-email/%s", publicURL, user.VerificationToken)
	body := fmt.Sprintf("Hi %s,\n\nConfirm your PakProperty email address by opening:\n%s\n", user.FullName(), link)

	if err := mailer.Send(ctx, user.Email, "Verify your PakProperty email", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	logger.Info().Str("user_id", user.ID).Msg("Verification email sent")
	return nil
}

// HandlePasswordResetEmail renders and sends a password reset link
func HandlePasswordResetEmail(ctx context.Context, t *asynq.Task, db *gorm.DB, mailer Mailer, publicURL string, logger zerolog.Logger) error {
	payload, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}

	var user models.User
	if err := models.FindByID(db, payload.UserID, &user); err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn().Str("user_id", payload.UserID).Msg("Reset email skipped - user gone")
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.ResetToken == "" {
		logger.Debug().Str("user_id", user.ID).Msg("Reset email skipped - no pending reset")
		return nil
	}

	link := fmt.Sprintf("%s/reset-password/%s", publicURL, user.ResetToken)
	body := fmt.Sprintf("Hi %s,\n\nReset your PakProperty password by opening:\n%s\n\nIf you did not request this, ignore this email.\n", user.FullName(), link)

	if err := mailer.Send(ctx, user.Email, "Reset your PakProperty password", body); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	logger.Info().Str("user_id", user.ID).Msg("Password reset email sent")
	return nil
}

// HandleInquiryNotice notifies a listing owner that a new inquiry arrived
func HandleInquiryNotice(ctx context.Context, t *asynq.Task, db *gorm.DB, mailer Mailer, logger zerolog.Logger) error {
	payload, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}

	var owner models.User
	if err := models.FindByID(db, payload.UserID, &owner); err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn().Str("user_id", payload.UserID).Msg("Inquiry notice skipped - owner gone")
			return nil
		}
		return fmt.Errorf("failed to load owner: %w", err)
	}

	var inquiry models.Inquiry
	if err := models.FindByIDWithPreload(db, payload.InquiryID, &inquiry, "Property"); err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn().Str("inquiry_id", payload.InquiryID).Msg("Inquiry notice skipped - inquiry gone")
			return nil
		}
		return fmt.Errorf("failed to load inquiry: %w", err)
	}

	body := fmt.Sprintf("Hi %s,\n\nYou have a new inquiry for %q:\n\n%s\n", owner.FullName(), inquiry.Property.Title, inquiry.Message)

	if err := mailer.Send(ctx, owner.Email, "New inquiry on your listing", body); err != nil {
		return fmt.Errorf("failed to send inquiry notice: %w", err)
	}

	logger.Info().
		Str("inquiry_id", inquiry.ID).
		Str("owner_id", owner.ID).
		Msg("Inquiry notice sent")
	return nil
}
