package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/auth"
	"github.com/pakproperty/pakproperty/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserDisabled      = errors.New("user disabled")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// JWTAuthMiddleware validates bearer tokens and loads the session
func JWTAuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		token, err := extractBearerToken(authHeader)
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Missing authorization header"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			respondWithError(c, log, http.StatusUnauthorized, err, message)
			return
		}

		// Validate JWT token
		claims, err := auth.ValidateToken(token)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to validate JWT token")
			respondWithError(c, log, http.StatusUnauthorized, ErrInvalidToken, "Invalid or expired token")
			return
		}

		// Verify user still exists and is active
		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User not found")
			respondWithError(c, log, http.StatusUnauthorized, ErrUserNotFound, "User not found")
			return
		}

		if !user.IsActive {
			respondWithError(c, log, http.StatusUnauthorized, ErrUserDisabled, "Account disabled")
			return
		}

		// Set session data
		sessionData := &auth.SessionData{
			UserID:     user.ID,
			Email:      user.Email,
			Role:       user.Role,
			IsVerified: user.IsVerified,
		}
		setSession(c, sessionData)

		c.Next()
	}
}

// RoleRequiredMiddleware ensures the authenticated user holds one of the
// given roles. Role matching is exact string comparison.
func RoleRequiredMiddleware(log zerolog.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no session"), "Unauthorized")
			return
		}

		for _, role := range roles {
			if sessionData.Role == role {
				c.Next()
				return
			}
		}

		log.Warn().
			Str("user_id", sessionData.UserID).
			Str("role", sessionData.Role).
			Strs("required", roles).
			Msg("Role check failed")
		c.JSON(http.StatusForbidden, gin.H{
			"error":          "Access denied",
			"required_roles": roles,
			"your_role":      sessionData.Role,
		})
		c.Abort()
	}
}

// VerifiedRequiredMiddleware ensures the user has confirmed their email
func VerifiedRequiredMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no session"), "Unauthorized")
			return
		}

		if !sessionData.IsVerified {
			respondWithError(c, log, http.StatusForbidden, errors.New("email not verified"), "Email verification required")
			return
		}

		c.Next()
	}
}
