package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// User roles, matched exactly against User.Role
const (
	RoleTenant = "tenant"
	RoleOwner  = "owner"
	RoleAgent  = "agent"
	RoleAdmin  = "admin"
)

// Roles lists every valid role value
var Roles = []string{RoleTenant, RoleOwner, RoleAgent, RoleAdmin}

// ValidRole reports whether role is one of the known role values
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Property lifecycle states
const (
	PropertyAvailable = "available"
	PropertyRented    = "rented"
	PropertyPending   = "pending"
	PropertyInactive  = "inactive"
)

// Inquiry lifecycle states
const (
	InquiryNew     = "new"
	InquiryRead    = "read"
	InquiryReplied = "replied"
	InquiryClosed  = "closed"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Settings represents the global configuration for the deployment.
// This is a singleton model (only one row should exist).
type Settings struct {
	BaseModel
	// Auto-generated on first server boot (64 hex chars)
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"`

	// Maintenance configuration
	// Cron expression, e.g. "0 3 * * *" (3am daily), empty = no sweep
	SweepSchedule string     `json:"sweep_schedule"`
	LastSweepAt   *time.Time `json:"last_sweep_at"`
	NextSweepAt   *time.Time `json:"next_sweep_at"`

	// How long a password reset token stays valid, in minutes
	ResetTokenTTL int `json:"reset_token_ttl" gorm:"not null;default:60"`
}

// User represents a marketplace account (tenant, owner, agent or admin)
type User struct {
	BaseModel
	Email        string `json:"email" gorm:"unique;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	Role         string `json:"role" gorm:"not null;default:tenant"`
	IsVerified   bool   `json:"is_verified" gorm:"not null;default:false"`
	IsActive     bool   `json:"is_active" gorm:"not null;default:true"`

	// Email verification and password reset credentials.
	// Opaque random strings, cleared once consumed.
	VerificationToken  string     `json:"-" gorm:"index"`
	ResetToken         string     `json:"-" gorm:"index"`
	ResetTokenExpires  *time.Time `json:"-"`
	VerificationSentAt *time.Time `json:"-"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Property represents a rental listing
type Property struct {
	BaseModel
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Type        string `json:"type" gorm:"not null"` // house, apartment, room, commercial, plot

	// Location
	City    string `json:"city" gorm:"not null;index"`
	Area    string `json:"area"`
	Address string `json:"address"`

	// Rent
	RentAmount   int64  `json:"rent_amount" gorm:"not null"`
	RentCurrency string `json:"rent_currency" gorm:"not null;default:PKR"`
	RentPeriod   string `json:"rent_period" gorm:"not null;default:monthly"`

	// Details
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	AreaSize  int    `json:"area_size"`
	AreaUnit  string `json:"area_unit" gorm:"default:marla"`

	Status        string     `json:"status" gorm:"not null;default:available;index"`
	IsFeatured    bool       `json:"is_featured" gorm:"not null;default:false"`
	FeaturedUntil *time.Time `json:"featured_until"`
	Views         int64      `json:"views" gorm:"not null;default:0"`

	OwnerID   string    `json:"owner_id" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
}

// SavedProperty links a user to a listing they bookmarked
type SavedProperty struct {
	BaseModel
	UserID     string `json:"user_id" gorm:"not null;uniqueIndex:idx_saved_user_property"`
	PropertyID string `json:"property_id" gorm:"not null;uniqueIndex:idx_saved_user_property"`

	// Relationships
	Property Property `json:"property,omitzero" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

// Inquiry represents a message from a prospective tenant to a listing owner
type Inquiry struct {
	BaseModel
	PropertyID string `json:"property_id" gorm:"not null;index"`
	SenderID   string `json:"sender_id" gorm:"not null;index"`

	Message string `json:"message" gorm:"type:text;not null"`
	Phone   string `json:"phone"`

	Status    string     `json:"status" gorm:"not null;default:new"`
	Reply     string     `json:"reply" gorm:"type:text"`
	RepliedAt *time.Time `json:"replied_at"`

	// Relationships
	Property Property `json:"property,omitzero" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	Sender   *User    `json:"sender,omitempty" gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &Settings{}, &Property{}, &SavedProperty{}, &Inquiry{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
