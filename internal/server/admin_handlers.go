package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/models"
)

// UpdateUserRequest carries admin-editable account fields
type UpdateUserRequest struct {
	Role     *string `json:"role" binding:"omitempty,role"`
	IsActive *bool   `json:"is_active"`
}

// FeaturePropertyRequest marks a listing as featured for a number of days
type FeaturePropertyRequest struct {
	Featured bool `json:"featured"`
	Days     int  `json:"days" binding:"omitempty,gt=0,lte=90"`
}

// SetPropertyStatusRequest carries a moderation status change
type SetPropertyStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available rented pending inactive"`
}

// StatsResponse summarizes the marketplace for the admin dashboard
type StatsResponse struct {
	Users          int64 `json:"users"`
	VerifiedUsers  int64 `json:"verified_users"`
	Properties     int64 `json:"properties"`
	AvailableCount int64 `json:"available_properties"`
	Inquiries      int64 `json:"inquiries"`
	OpenInquiries  int64 `json:"open_inquiries"`
}

// @Summary List users
// @Description List all users (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserDetail
// @Failure 403 {object} map[string]interface{}
// @Router /api/admin/users [get]
func (s *Server) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	userDetails := make([]UserDetail, len(users))
	for i, user := range users {
		userDetails[i] = *userDetail(&user)
	}

	c.JSON(http.StatusOK, userDetails)
}

// @Summary Update user
// @Description Change a user's role or active flag (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/admin/users/{id} [put]
func (s *Server) updateUser(c *gin.Context) {
	userID := c.Param("id")
	sessionData, _ := GetSessionData(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Admins cannot demote or disable themselves
	if userID == sessionData.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot modify yourself"})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("updated_by", sessionData.UserID).
		Msg("User updated")

	c.JSON(http.StatusOK, gin.H{"data": userDetail(&user)})
}

// @Summary Delete user
// @Description Delete a user (admin only, cannot delete self)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/admin/users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	userID := c.Param("id")

	sessionData, _ := GetSessionData(c)

	// Prevent deleting self
	if userID == sessionData.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Delete(&user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("deleted_by", sessionData.UserID).
		Msg("User deleted")

	c.Status(http.StatusNoContent)
}

// @Summary List all properties
// @Description List every listing regardless of status (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PropertyListResponse
// @Router /api/admin/properties [get]
func (s *Server) adminListProperties(c *gin.Context) {
	query := s.db.Model(&models.Property{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query = applyListingFilters(c, query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	page, limit, offset := paginate(c)

	var properties []models.Property
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Owner").
		Find(&properties).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, PropertyListResponse{
		Data:  properties,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary Feature property
// @Description Mark or unmark a listing as featured (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Param request body FeaturePropertyRequest true "Feature window"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/admin/properties/{id}/feature [put]
func (s *Server) featureProperty(c *gin.Context) {
	propertyID := c.Param("id")

	var req FeaturePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var property models.Property
	if err := models.FindByID(s.db, propertyID, &property); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updates := map[string]interface{}{"is_featured": req.Featured}
	if req.Featured {
		days := req.Days
		if days == 0 {
			days = 7
		}
		updates["featured_until"] = time.Now().AddDate(0, 0, days)
	} else {
		updates["featured_until"] = nil
	}

	if err := s.db.Model(&property).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to feature property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to feature property"})
		return
	}

	s.logger.Info().
		Str("property_id", property.ID).
		Bool("featured", req.Featured).
		Msg("Property feature flag changed")

	c.JSON(http.StatusOK, gin.H{"data": property})
}

// @Summary Set property status
// @Description Moderate a listing's status (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Param request body SetPropertyStatusRequest true "Status"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/admin/properties/{id}/status [put]
func (s *Server) setPropertyStatus(c *gin.Context) {
	propertyID := c.Param("id")

	var req SetPropertyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var property models.Property
	if err := models.FindByID(s.db, propertyID, &property); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Model(&property).Update("status", req.Status).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to set property status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set property status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": property})
}

// @Summary Marketplace stats
// @Description Aggregate counts for the admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse
// @Router /api/admin/stats [get]
func (s *Server) getStats(c *gin.Context) {
	var stats StatsResponse

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Users, s.db.Model(&models.User{})},
		{&stats.VerifiedUsers, s.db.Model(&models.User{}).Where("is_verified = ?", true)},
		{&stats.Properties, s.db.Model(&models.Property{})},
		{&stats.AvailableCount, s.db.Model(&models.Property{}).Where("status = ?", models.PropertyAvailable)},
		{&stats.Inquiries, s.db.Model(&models.Inquiry{})},
		{&stats.OpenInquiries, s.db.Model(&models.Inquiry{}).Where("status IN ?", []string{models.InquiryNew, models.InquiryRead})},
	}

	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to compute stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, stats)
}
