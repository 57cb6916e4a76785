package repository

import (
	"context"
	"regexp"
	"testing"

	"nourish/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantHandle   string
		wantCode     string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "handle", "email", "role"}).
						AddRow(1, "chef", "chef@example.com", "Creator"))
			},
			wantHandle: "chef",
		},
		{
			name:   "Not Found",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(2, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, models.ErrorCode(err))
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantHandle, user.Handle)
				assert.Equal(t, models.RoleCreator, user.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateDuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	existing := seedUser(t, db, models.RoleConsumer)

	dup := &models.User{Email: existing.Email, Password: "x", FirstName: "a", LastName: "b", Handle: "other"}
	err := repo.Create(ctx, dup)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestUserRepository_UpdateLeavesFollowersCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, models.RoleCreator)
	require.NoError(t, db.Model(u).UpdateColumn("followers_count", 7).Error)

	stale := *u
	stale.FollowersCount = 0
	stale.Bio = "plant-based athlete"
	require.NoError(t, repo.Update(ctx, &stale))

	got, err := repo.GetCredentials(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "plant-based athlete", got.Bio)
	assert.Equal(t, 7, got.FollowersCount)
	assert.Equal(t, "hash", got.Password)
}

func TestUserRepository_LookupsAndSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, models.RoleCreator)
	seedUser(t, db, models.RoleConsumer)

	byEmail, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := repo.GetByHandle(ctx, "nobody-has-this")
	require.NoError(t, err)
	assert.Nil(t, missing)

	found, err := repo.Search(ctx, u.Handle, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, u.ID, found[0].ID)

	all, err := repo.Search(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "new-hash"))
	err = repo.UpdatePassword(ctx, 9999, "x")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
