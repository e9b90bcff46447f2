package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeVerificationEmail  = "email:verification"
	TypePasswordResetEmail = "email:password_reset"
	TypeInquiryNotice      = "email:inquiry_notice"
	TypeMaintenanceSweep   = "maintenance:sweep"
)

// EmailPayload is the payload for outbound email tasks
type EmailPayload struct {
	UserID    string `json:"user_id"`
	InquiryID string `json:"inquiry_id,omitempty"`
}

// NewVerificationEmailTask creates a task to send an email verification link
func NewVerificationEmailTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(EmailPayload{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeVerificationEmail, payload), nil
}

// NewPasswordResetEmailTask creates a task to send a password reset link
func NewPasswordResetEmailTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(EmailPayload{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePasswordResetEmail, payload), nil
}

// NewInquiryNoticeTask creates a task to notify a listing owner of a new inquiry
func NewInquiryNoticeTask(userID, inquiryID string) (*asynq.Task, error) {
	payload, err := json.Marshal(EmailPayload{UserID: userID, InquiryID: inquiryID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeInquiryNotice, payload), nil
}

// NewMaintenanceSweepTask creates a task that expires featured listings and
// purges stale reset tokens
func NewMaintenanceSweepTask() *asynq.Task {
	return asynq.NewTask(TypeMaintenanceSweep, nil)
}

// ParseEmailPayload parses an email task payload from an Asynq task
func ParseEmailPayload(task *asynq.Task) (EmailPayload, error) {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
