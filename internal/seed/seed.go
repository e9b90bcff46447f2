package seed

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/pakproperty/pakproperty/internal/auth"
	"github.com/pakproperty/pakproperty/internal/models"
)

// Fixture drives the generated data: which cities and areas listings land
// in, and the rent ranges that make them look plausible.
type Fixture struct {
	Cities []City  `yaml:"cities"`
	Rent   Rent    `yaml:"rent"`
	Types  []Entry `yaml:"types"`
}

type City struct {
	Name  string   `yaml:"name"`
	Areas []string `yaml:"areas"`
}

type Rent struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

type Entry struct {
	Type     string `yaml:"type"`
	Template string `yaml:"template"`
}

// defaultFixture covers the major Pakistani rental markets
const defaultFixture = `
cities:
  - name: Karachi
    areas: [DHA Phase 6, Clifton, Gulshan-e-Iqbal, North Nazimabad, Bahria Town]
  - name: Lahore
    areas: [DHA Phase 5, Gulberg, Johar Town, Model Town, Bahria Town]
  - name: Islamabad
    areas: [F-7, F-10, E-11, G-13, Bahria Enclave]
  - name: Rawalpindi
    areas: [Satellite Town, Chaklala, Peshawar Road]
rent:
  min: 25000
  max: 350000
types:
  - type: house
    template: "%d Bed House for Rent in %s"
  - type: apartment
    template: "%d Bed Apartment in %s"
  - type: room
    template: "Furnished Room (%d available) in %s"
`

// LoadFixture reads a fixture file, falling back to the built-in defaults
// when path is empty
func LoadFixture(path string) (*Fixture, error) {
	raw := []byte(defaultFixture)
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture: %w", err)
		}
	}

	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if len(fixture.Cities) == 0 || len(fixture.Types) == 0 {
		return nil, fmt.Errorf("fixture must define at least one city and one type")
	}
	return &fixture, nil
}

// Counts controls how much data Run generates
type Counts struct {
	Owners     int
	Tenants    int
	Properties int
	Inquiries  int
}

// DefaultCounts is enough data to make the listing pages interesting
var DefaultCounts = Counts{
	Owners:     8,
	Tenants:    20,
	Properties: 60,
	Inquiries:  30,
}

// Run populates the database with fake accounts, listings and inquiries.
// Every generated account gets the password "password123".
func Run(db *gorm.DB, fixture *Fixture, counts Counts, logger zerolog.Logger) error {
	gofakeit.Seed(time.Now().UnixNano())

	passwordHash, err := auth.HashPassword("password123")
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	owners, err := seedUsers(db, counts.Owners, models.RoleOwner, passwordHash)
	if err != nil {
		return err
	}
	tenants, err := seedUsers(db, counts.Tenants, models.RoleTenant, passwordHash)
	if err != nil {
		return err
	}
	logger.Info().Int("owners", len(owners)).Int("tenants", len(tenants)).Msg("Seeded users")

	properties, err := seedProperties(db, fixture, counts.Properties, owners)
	if err != nil {
		return err
	}
	logger.Info().Int("properties", len(properties)).Msg("Seeded properties")

	inquiries, err := seedInquiries(db, counts.Inquiries, properties, tenants)
	if err != nil {
		return err
	}
	logger.Info().Int("inquiries", inquiries).Msg("Seeded inquiries")

	saved, err := seedSavedProperties(db, properties, tenants)
	if err != nil {
		return err
	}
	logger.Info().Int("saved", saved).Msg("Seeded saved properties")

	return nil
}

func seedUsers(db *gorm.DB, count int, role, passwordHash string) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Email:        gofakeit.Email(),
			PasswordHash: passwordHash,
			FirstName:    gofakeit.FirstName(),
			LastName:     gofakeit.LastName(),
			Phone:        gofakeit.Phone(),
			Role:         role,
			IsVerified:   rand.Float32() < 0.8,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func seedProperties(db *gorm.DB, fixture *Fixture, count int, owners []models.User) ([]models.Property, error) {
	if len(owners) == 0 {
		return nil, fmt.Errorf("cannot seed properties without owners")
	}

	properties := make([]models.Property, 0, count)
	for i := 0; i < count; i++ {
		city := fixture.Cities[rand.Intn(len(fixture.Cities))]
		area := city.Areas[rand.Intn(len(city.Areas))]
		entry := fixture.Types[rand.Intn(len(fixture.Types))]
		bedrooms := 1 + rand.Intn(5)

		rent := fixture.Rent.Min
		if fixture.Rent.Max > fixture.Rent.Min {
			rent += rand.Int63n(fixture.Rent.Max - fixture.Rent.Min)
		}
		// Round to the nearest thousand, nobody lists 83,417 PKR
		rent -= rent % 1000

		property := models.Property{
			Title:        fmt.Sprintf(entry.Template, bedrooms, area),
			Description:  gofakeit.Paragraph(1, 3, 12, " "),
			Type:         entry.Type,
			City:         city.Name,
			Area:         area,
			Address:      gofakeit.Street(),
			RentAmount:   rent,
			RentCurrency: "PKR",
			RentPeriod:   "monthly",
			Bedrooms:     bedrooms,
			Bathrooms:    1 + rand.Intn(bedrooms),
			AreaSize:     3 + rand.Intn(20),
			AreaUnit:     "marla",
			Status:       models.PropertyAvailable,
			IsFeatured:   rand.Float32() < 0.1,
			Views:        int64(rand.Intn(500)),
			OwnerID:      owners[rand.Intn(len(owners))].ID,
		}
		if property.IsFeatured {
			until := time.Now().AddDate(0, 0, 7+rand.Intn(14))
			property.FeaturedUntil = &until
		}
		// A slice of the market is already taken
		if rand.Float32() < 0.15 {
			property.Status = models.PropertyRented
		}

		if err := db.Create(&property).Error; err != nil {
			return nil, fmt.Errorf("failed to create property: %w", err)
		}
		properties = append(properties, property)
	}
	return properties, nil
}

func seedInquiries(db *gorm.DB, count int, properties []models.Property, tenants []models.User) (int, error) {
	if len(properties) == 0 || len(tenants) == 0 {
		return 0, nil
	}

	messages := []string{
		"Is this still available? I would like to visit this week.",
		"What is the advance and security deposit?",
		"Are utilities included in the rent?",
		"Is the rent negotiable for a long-term lease?",
		"Do you allow small families with pets?",
	}

	created := 0
	for i := 0; i < count; i++ {
		property := properties[rand.Intn(len(properties))]
		tenant := tenants[rand.Intn(len(tenants))]

		inquiry := models.Inquiry{
			PropertyID: property.ID,
			SenderID:   tenant.ID,
			Message:    messages[rand.Intn(len(messages))],
			Phone:      tenant.Phone,
			Status:     models.InquiryNew,
		}
		// Some inquiries already got a reply
		if rand.Float32() < 0.4 {
			now := time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour)
			inquiry.Status = models.InquiryReplied
			inquiry.Reply = "Yes, it is available. You can visit any evening after 5pm."
			inquiry.RepliedAt = &now
		}

		if err := db.Create(&inquiry).Error; err != nil {
			return created, fmt.Errorf("failed to create inquiry: %w", err)
		}
		created++
	}
	return created, nil
}

func seedSavedProperties(db *gorm.DB, properties []models.Property, tenants []models.User) (int, error) {
	created := 0
	for _, tenant := range tenants {
		if rand.Float32() > 0.6 {
			continue
		}
		picked := map[string]bool{}
		for i := 0; i < 1+rand.Intn(4); i++ {
			property := properties[rand.Intn(len(properties))]
			if picked[property.ID] {
				continue
			}
			picked[property.ID] = true

			saved := models.SavedProperty{
				UserID:     tenant.ID,
				PropertyID: property.ID,
			}
			if err := db.Create(&saved).Error; err != nil {
				return created, fmt.Errorf("failed to create saved property: %w", err)
			}
			created++
		}
	}
	return created, nil
}
