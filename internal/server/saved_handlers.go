package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/models"
)

// @Summary List saved properties
// @Description List the current user's bookmarked listings
// @Tags saved
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/saved-properties [get]
func (s *Server) listSavedProperties(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var saved []models.SavedProperty
	if err := s.db.
		Where("user_id = ?", sessionData.UserID).
		Order("created_at DESC").
		Preload("Property").
		Preload("Property.Owner").
		Find(&saved).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list saved properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": saved})
}

// @Summary Save property
// @Description Bookmark a listing for the current user
// @Tags saved
// @Produce json
// @Security BearerAuth
// @Param propertyID path string true "Property ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/saved-properties/{propertyID} [post]
func (s *Server) saveProperty(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	propertyID := c.Param("propertyID")

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

	var count int64
	if err := s.db.Model(&models.SavedProperty{}).
		Where("user_id = ? AND property_id = ?", sessionData.UserID, propertyID).
		Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check saved property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Already saved"})
		return
	}

	saved := &models.SavedProperty{
		UserID:     sessionData.UserID,
		PropertyID: propertyID,
	}
	if err := s.db.Create(saved).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to save property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save property"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": saved})
}

// @Summary Unsave property
// @Description Remove a listing from the current user's bookmarks
// @Tags saved
// @Produce json
// @Security BearerAuth
// @Param propertyID path string true "Property ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/saved-properties/{propertyID} [delete]
func (s *Server) unsaveProperty(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	propertyID := c.Param("propertyID")

	result := s.db.
		Where("user_id = ? AND property_id = ?", sessionData.UserID, propertyID).
		Delete(&models.SavedProperty{})
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Msg("Failed to unsave property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		respondWithError(c, s.logger, http.StatusNotFound, errors.New("not saved"), "Not saved")
		return
	}

	c.Status(http.StatusNoContent)
}
