package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pakproperty/pakproperty/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.sqlite")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func TestLoadFixture_Defaults(t *testing.T) {
	fixture, err := LoadFixture("")
	require.NoError(t, err)
	require.NotEmpty(t, fixture.Cities)
	require.NotEmpty(t, fixture.Types)
	require.Greater(t, fixture.Rent.Max, fixture.Rent.Min)

	for _, city := range fixture.Cities {
		require.NotEmpty(t, city.Name)
		require.NotEmpty(t, city.Areas, "city %s has no areas", city.Name)
	}
}

func TestLoadFixture_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	content := `
cities:
  - name: Multan
    areas: [Cantt]
rent:
  min: 10000
  max: 20000
types:
  - type: house
    template: "%d Bed House in %s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fixture, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, fixture.Cities, 1)
	require.Equal(t, "Multan", fixture.Cities[0].Name)
}

func TestLoadFixture_RejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cities: []\ntypes: []\n"), 0644))

	_, err := LoadFixture(path)
	require.Error(t, err)
}

func TestRun_PopulatesDatabase(t *testing.T) {
	db := newTestDB(t)
	fixture, err := LoadFixture("")
	require.NoError(t, err)

	counts := Counts{Owners: 3, Tenants: 5, Properties: 12, Inquiries: 8}
	require.NoError(t, Run(db, fixture, counts, zerolog.Nop()))

	var users, properties, inquiries int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Property{}).Count(&properties).Error)
	require.NoError(t, db.Model(&models.Inquiry{}).Count(&inquiries).Error)

	require.EqualValues(t, counts.Owners+counts.Tenants, users)
	require.EqualValues(t, counts.Properties, properties)
	require.EqualValues(t, counts.Inquiries, inquiries)

	// Every listing belongs to a seeded owner and lands in a fixture city
	knownCities := map[string]bool{}
	for _, city := range fixture.Cities {
		knownCities[city.Name] = true
	}
	var all []models.Property
	require.NoError(t, db.Find(&all).Error)
	for _, p := range all {
		require.NotEmpty(t, p.OwnerID)
		require.True(t, knownCities[p.City], "unexpected city %s", p.City)
		require.Equal(t, "PKR", p.RentCurrency)
	}
}
