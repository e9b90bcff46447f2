package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/models"
)

// CreatePropertyRequest represents a new listing
type CreatePropertyRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Type         string `json:"type" binding:"required,oneof=house apartment room commercial plot"`
	City         string `json:"city" binding:"required"`
	Area         string `json:"area"`
	Address      string `json:"address"`
	RentAmount   int64  `json:"rent_amount" binding:"required,gt=0"`
	RentCurrency string `json:"rent_currency"`
	RentPeriod   string `json:"rent_period" binding:"omitempty,oneof=monthly yearly"`
	Bedrooms     int    `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms    int    `json:"bathrooms" binding:"omitempty,gte=0"`
	AreaSize     int    `json:"area_size" binding:"omitempty,gte=0"`
	AreaUnit     string `json:"area_unit" binding:"omitempty,oneof=marla kanal sqft sqyd"`
}

// UpdatePropertyRequest carries partial listing fields
type UpdatePropertyRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Area        *string `json:"area"`
	Address     *string `json:"address"`
	RentAmount  *int64  `json:"rent_amount" binding:"omitempty,gt=0"`
	Bedrooms    *int    `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms   *int    `json:"bathrooms" binding:"omitempty,gte=0"`
	AreaSize    *int    `json:"area_size" binding:"omitempty,gte=0"`
	Status      *string `json:"status" binding:"omitempty,oneof=available rented pending inactive"`
}

// PropertyListResponse wraps a listing page with pagination metadata
type PropertyListResponse struct {
	Data  []models.Property `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// sortColumns whitelists sortable listing fields
var sortColumns = map[string]string{
	"created_at":  "created_at",
	"rent_amount": "rent_amount",
	"views":       "views",
	"bedrooms":    "bedrooms",
}

// applyListingFilters narrows a listing query from query-string parameters
func applyListingFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if typ := c.Query("type"); typ != "" {
		query = query.Where("type = ?", typ)
	}
	if minRent := c.Query("min_rent"); minRent != "" {
		if v, err := strconv.ParseInt(minRent, 10, 64); err == nil {
			query = query.Where("rent_amount >= ?", v)
		}
	}
	if maxRent := c.Query("max_rent"); maxRent != "" {
		if v, err := strconv.ParseInt(maxRent, 10, 64); err == nil {
			query = query.Where("rent_amount <= ?", v)
		}
	}
	if bedrooms := c.Query("bedrooms"); bedrooms != "" {
		if v, err := strconv.Atoi(bedrooms); err == nil {
			query = query.Where("bedrooms >= ?", v)
		}
	}
	return query
}

// paginate reads page/limit query parameters with sane bounds
func paginate(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

// @Summary List properties
// @Description List available properties with filters, sorting and pagination
// @Tags properties
// @Produce json
// @Success 200 {object} PropertyListResponse
// @Router /api/properties [get]
func (s *Server) listProperties(c *gin.Context) {
	query := s.db.Model(&models.Property{}).Where("status = ?", models.PropertyAvailable)
	query = applyListingFilters(c, query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	sort := "created_at"
	if col, ok := sortColumns[c.Query("sort")]; ok {
		sort = col
	}
	order := "DESC"
	if c.Query("order") == "asc" {
		order = "ASC"
	}

	page, limit, offset := paginate(c)

	var properties []models.Property
	// Featured listings float to the top of every page ordering
	if err := query.
		Order("is_featured DESC").
		Order(sort + " " + order).
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

// @Summary Get property
// @Description Fetch a single listing and increment its view counter
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/properties/{id} [get]
func (s *Server) getProperty(c *gin.Context) {
	propertyID := c.Param("id")

	var property models.Property
	if err := models.FindByIDWithPreload(s.db, propertyID, &property, "Owner"); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// View counter is best effort; a failed increment never blocks the read
	if err := s.db.Model(&property).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		s.logger.Warn().Err(err).Str("property_id", property.ID).Msg("Failed to count view")
	}
	property.Views++

	c.JSON(http.StatusOK, gin.H{"data": property})
}

// @Summary Create property
// @Description Create a new listing (owner/agent only, verified email required)
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePropertyRequest true "Listing"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/properties [post]
func (s *Server) createProperty(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property := &models.Property{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		City:         req.City,
		Area:         req.Area,
		Address:      req.Address,
		RentAmount:   req.RentAmount,
		RentCurrency: req.RentCurrency,
		RentPeriod:   req.RentPeriod,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		AreaSize:     req.AreaSize,
		AreaUnit:     req.AreaUnit,
		Status:       models.PropertyAvailable,
		OwnerID:      sessionData.UserID,
	}
	if property.RentCurrency == "" {
		property.RentCurrency = "PKR"
	}
	if property.RentPeriod == "" {
		property.RentPeriod = "monthly"
	}
	if property.AreaUnit == "" {
		property.AreaUnit = "marla"
	}

	if err := s.db.Create(property).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	s.logger.Info().
		Str("property_id", property.ID).
		Str("owner_id", sessionData.UserID).
		Str("city", property.City).
		Msg("Property created")

	c.JSON(http.StatusCreated, gin.H{"data": property})
}

// loadOwnedProperty fetches a listing and enforces write access: the record
// owner, or an admin, may modify it
func (s *Server) loadOwnedProperty(c *gin.Context) (*models.Property, bool) {
	sessionData, _ := GetSessionData(c)
	propertyID := c.Param("id")

	var property models.Property
	if err := models.FindByID(s.db, propertyID, &property); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if property.OwnerID != sessionData.UserID && !sessionData.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		return nil, false
	}

	return &property, true
}

// @Summary Update property
// @Description Update a listing owned by the current user
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Param request body UpdatePropertyRequest true "Fields"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/properties/{id} [put]
func (s *Server) updateProperty(c *gin.Context) {
	property, ok := s.loadOwnedProperty(c)
	if !ok {
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Area != nil {
		updates["area"] = *req.Area
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.RentAmount != nil {
		updates["rent_amount"] = *req.RentAmount
	}
	if req.Bedrooms != nil {
		updates["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		updates["bathrooms"] = *req.Bathrooms
	}
	if req.AreaSize != nil {
		updates["area_size"] = *req.AreaSize
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(property).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update property")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": property})
}

// @Summary Delete property
// @Description Delete a listing owned by the current user
// @Tags properties
// @Produce json
// @Security BearerAuth
// @Param id path string true "Property ID"
// @Success 204
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/properties/{id} [delete]
func (s *Server) deleteProperty(c *gin.Context) {
	property, ok := s.loadOwnedProperty(c)
	if !ok {
		return
	}

	if err := s.db.Delete(property).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	s.logger.Info().Str("property_id", property.ID).Msg("Property deleted")

	c.Status(http.StatusNoContent)
}

// @Summary List own properties
// @Description List every listing owned by the current user, any status
// @Tags properties
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/my-properties [get]
func (s *Server) listOwnProperties(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var properties []models.Property
	if err := s.db.
		Where("owner_id = ?", sessionData.UserID).
		Order("created_at DESC").
		Find(&properties).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list own properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": properties})
}
