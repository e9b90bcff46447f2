package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/models"
	"github.com/pakproperty/pakproperty/internal/tasks"
)

// CreateInquiryRequest represents a message to a listing owner
type CreateInquiryRequest struct {
	Message string `json:"message" binding:"required"`
	Phone   string `json:"phone"`
}

// ReplyInquiryRequest carries the owner's reply
type ReplyInquiryRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// @Summary Create inquiry
// @Description Send an inquiry about a listing to its owner
// @Tags inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Param request body CreateInquiryRequest true "Inquiry"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/properties/{id}/inquiries [post]
func (s *Server) createInquiry(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	propertyID := c.Param("id")

	var req CreateInquiryRequest
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

	if property.OwnerID == sessionData.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot inquire about your own listing"})
		return
	}

	inquiry := &models.Inquiry{
		PropertyID: propertyID,
		SenderID:   sessionData.UserID,
		Message:    req.Message,
		Phone:      req.Phone,
		Status:     models.InquiryNew,
	}
	if err := s.db.Create(inquiry).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create inquiry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
		return
	}

	s.enqueueEmail(tasks.NewInquiryNoticeTask(property.OwnerID, inquiry.ID))

	s.logger.Info().
		Str("inquiry_id", inquiry.ID).
		Str("property_id", propertyID).
		Str("sender_id", sessionData.UserID).
		Msg("Inquiry created")

	c.JSON(http.StatusCreated, gin.H{"data": inquiry})
}

// @Summary List inquiries
// @Description List inquiries the current user sent, plus those received on their listings
// @Tags inquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/inquiries [get]
func (s *Server) listInquiries(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var sent []models.Inquiry
	if err := s.db.
		Where("sender_id = ?", sessionData.UserID).
		Order("created_at DESC").
		Preload("Property").
		Find(&sent).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list sent inquiries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var received []models.Inquiry
	if err := s.db.
		Joins("JOIN properties ON properties.id = inquiries.property_id").
		Where("properties.owner_id = ?", sessionData.UserID).
		Order("inquiries.created_at DESC").
		Preload("Property").
		Preload("Sender").
		Find(&received).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list received inquiries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent, "received": received})
}

// loadReceivedInquiry fetches an inquiry addressed to one of the current
// user's listings
func (s *Server) loadReceivedInquiry(c *gin.Context) (*models.Inquiry, bool) {
	sessionData, _ := GetSessionData(c)
	inquiryID := c.Param("id")

	var inquiry models.Inquiry
	if err := models.FindByIDWithPreload(s.db, inquiryID, &inquiry, "Property"); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find inquiry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if inquiry.Property.OwnerID != sessionData.UserID && !sessionData.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your inquiry"})
		return nil, false
	}

	return &inquiry, true
}

// @Summary Mark inquiry read
// @Tags inquiries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inquiry ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/inquiries/{id}/read [put]
func (s *Server) markInquiryRead(c *gin.Context) {
	inquiry, ok := s.loadReceivedInquiry(c)
	if !ok {
		return
	}

	if inquiry.Status == models.InquiryNew {
		if err := s.db.Model(inquiry).Update("status", models.InquiryRead).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to mark inquiry read")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": inquiry})
}

// @Summary Reply to inquiry
// @Tags inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inquiry ID"
// @Param request body ReplyInquiryRequest true "Reply"
// @Success 200 {object} map[string]interface{}
// @Router /api/inquiries/{id}/reply [put]
func (s *Server) replyInquiry(c *gin.Context) {
	inquiry, ok := s.loadReceivedInquiry(c)
	if !ok {
		return
	}

	var req ReplyInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if err := s.db.Model(inquiry).Updates(map[string]interface{}{
		"reply":      req.Reply,
		"replied_at": now,
		"status":     models.InquiryReplied,
	}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to reply to inquiry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.logger.Info().Str("inquiry_id", inquiry.ID).Msg("Inquiry replied")

	c.JSON(http.StatusOK, gin.H{"data": inquiry})
}

// @Summary Close inquiry
// @Tags inquiries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inquiry ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/inquiries/{id}/close [put]
func (s *Server) closeInquiry(c *gin.Context) {
	inquiry, ok := s.loadReceivedInquiry(c)
	if !ok {
		return
	}

	if err := s.db.Model(inquiry).Update("status", models.InquiryClosed).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to close inquiry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inquiry})
}
