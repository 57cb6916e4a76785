package repository

import (
	"fmt"
	"testing"
	"time"

	"nourish/internal/database"
	"nourish/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns a migrated in-memory sqlite database private to t.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(t.Context(), db))
	return db
}

// setupMockDB returns a gorm handle over sqlmock speaking the postgres dialect.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Email:     gofakeit.Email(),
		Password:  "hash",
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Handle:    fmt.Sprintf("%s_%d", gofakeit.Username(), gofakeit.Number(1, 1_000_000)),
		Role:      role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedTier(t *testing.T, db *gorm.DB, creatorID uint, level int) *models.Tier {
	t.Helper()
	tier := &models.Tier{
		CreatorID:   creatorID,
		Title:       gofakeit.BuzzWord(),
		Description: gofakeit.Sentence(8),
		Price:       9.99,
		Currency:    models.CurrencyEUR,
		Level:       level,
	}
	require.NoError(t, db.Create(tier).Error)
	return tier
}

func seedPost(t *testing.T, db *gorm.DB, creatorID uint, tierID *uint, date time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		CreatorID:     creatorID,
		TierID:        tierID,
		Title:         gofakeit.Sentence(4),
		Description:   gofakeit.Paragraph(1, 2, 6, " "),
		Type:          models.PostTypeNormal,
		Date:          date,
		AllowComments: true,
		Ingredients:   []string{"oats", "milk"},
	}
	require.NoError(t, db.Omit("Creator", "Meal").Create(p).Error)
	return p
}

func uintPtr(v uint) *uint { return &v }
