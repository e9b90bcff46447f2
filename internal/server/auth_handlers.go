package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/auth"
	"github.com/pakproperty/pakproperty/internal/models"
	"github.com/pakproperty/pakproperty/internal/tasks"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role" binding:"omitempty,role"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login or registration response
type LoginResponse struct {
	Token string      `json:"token"`
	User  *UserDetail `json:"user"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpdateProfileRequest carries partial profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// ChangePasswordRequest carries a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ForgotPasswordRequest carries the account email for a reset link
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

func userDetail(user *models.User) *UserDetail {
	return &UserDetail{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      user.Phone,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
	}
}

// enqueueEmail hands an email task to the worker queue. A full queue is
// logged but never fails the request that triggered the email.
func (s *Server) enqueueEmail(task *asynq.Task, err error) {
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build email task")
		return
	}
	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Str("type", task.Type()).Msg("Failed to enqueue email task")
	}
}

// @Summary Register
// @Description Create a new account and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleTenant
	}
	// Admin accounts are provisioned by existing admins, never self-registered
	if role == models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	verificationToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate verification token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	now := time.Now()
	user := &models.User{
		Email:              req.Email,
		PasswordHash:       passwordHash,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Phone:              req.Phone,
		Role:               role,
		IsActive:           true,
		VerificationToken:  verificationToken,
		VerificationSentAt: &now,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	s.enqueueEmail(tasks.NewVerificationEmailTask(user.ID))

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Str("role", user.Role).Msg("User registered")

	c.JSON(http.StatusCreated, LoginResponse{
		Token: token,
		User:  userDetail(user),
	})
}

// @Summary Login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find user by email
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Verify password
	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account disabled"})
		return
	}

	// Generate JWT token
	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  userDetail(&user),
	})
}

// @Summary Get current user
// @Description Get information about the currently authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userDetail(&user)})
}

// @Summary Update profile
// @Description Update the current user's profile fields
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/profile [put]
func (s *Server) updateProfile(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update profile")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": userDetail(&user)})
}

// @Summary Change password
// @Description Replace the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Password change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/change-password [put]
func (s *Server) changePassword(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	if err := s.db.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to change password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password changed")

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// @Summary Forgot password
// @Description Issue a password reset token and email it to the account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/forgot-password [post]
func (s *Server) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Whether or not the account exists, respond identically so the
	// endpoint cannot be used to probe registered emails
	response := gin.H{"message": "If that email is registered, a reset link has been sent"}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			s.logger.Error().Err(err).Msg("Failed to find user for reset")
		}
		c.JSON(http.StatusOK, response)
		return
	}

	resetToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate reset token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var settings models.Settings
	ttl := 60
	if err := s.db.First(&settings).Error; err == nil && settings.ResetTokenTTL > 0 {
		ttl = settings.ResetTokenTTL
	}
	expires := time.Now().Add(time.Duration(ttl) * time.Minute)

	if err := s.db.Model(&user).
		Updates(map[string]interface{}{"reset_token": resetToken, "reset_token_expires": expires}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to store reset token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.enqueueEmail(tasks.NewPasswordResetEmailTask(user.ID))
	s.logger.Info().Str("user_id", user.ID).Msg("Password reset requested")

	c.JSON(http.StatusOK, response)
}

// @Summary Reset password
// @Description Set a new password using a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/reset-password/{token} [post]
func (s *Server) resetPassword(c *gin.Context) {
	resetToken := c.Param("token")

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := s.db.Where("reset_token = ?", resetToken).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find reset token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"password_hash":       passwordHash,
		"reset_token":         "",
		"reset_token_expires": nil,
	}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to reset password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password reset")

	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}

// @Summary Verify email
// @Description Confirm an email address using a verification token
// @Tags auth
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/verify-email/{token} [get]
func (s *Server) verifyEmail(c *gin.Context) {
	verificationToken := c.Param("token")

	var user models.User
	if err := s.db.Where("verification_token = ?", verificationToken).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification token"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find verification token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"is_verified":        true,
		"verification_token": "",
	}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to verify email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Email verified")

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// @Summary Resend verification
// @Description Re-issue the email verification link for the current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/resend-verification [post]
func (s *Server) resendVerification(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.IsVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already verified"})
		return
	}

	verificationToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate verification token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	now := time.Now()
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"verification_token":   verificationToken,
		"verification_sent_at": now,
	}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to store verification token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.enqueueEmail(tasks.NewVerificationEmailTask(user.ID))
	s.logger.Info().Str("user_id", user.ID).Msg("Verification email re-sent")

	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}
