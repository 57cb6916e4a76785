package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nourish/internal/database"
	"nourish/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint, uint) (*models.Post, error)
	getSummaryFn func(context.Context, uint) (*models.Post, error)
	listStreamFn func(context.Context, bool, int, int, uint) ([]*models.Post, error)
	listLikedFn  func(context.Context, uint, int, int) ([]*models.Post, error)
	updateFn     func(context.Context, *models.Post) error
	deleteFn     func(context.Context, uint) error
	likeFn       func(context.Context, uint, uint) error
	unlikeFn     func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) GetSummary(ctx context.Context, id uint) (*models.Post, error) {
	return s.getSummaryFn(ctx, id)
}
func (s *postRepoStub) ListStream(ctx context.Context, gated bool, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listStreamFn(ctx, gated, limit, offset, viewerID)
}
func (s *postRepoStub) ListLiked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listLikedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, _, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		getSummaryFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AllowComments: true}, nil
		},
		listStreamFn: func(_ context.Context, _ bool, _, _ int, _ uint) ([]*models.Post, error) {
			return []*models.Post{}, nil
		},
		listLikedFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return []*models.Post{}, nil },
		updateFn:    func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
		likeFn:      func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:    func(_ context.Context, _, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn           func(context.Context, *models.Comment) error
	getByIDFn          func(context.Context, uint) (*models.Comment, error)
	adjustReplyCountFn func(context.Context, uint, int) error
	listTopLevelFn     func(context.Context, uint, int, int) ([]*models.Comment, error)
	listRepliesFn      func(context.Context, uint, uint, int, int) ([]*models.Comment, error)
	updateMessageFn    func(context.Context, uint, string) error
	deleteFn           func(context.Context, uint) (bool, error)
	reconcileFn        func(context.Context) ([]uint, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) AdjustReplyCount(ctx context.Context, id uint, delta int) error {
	return s.adjustReplyCountFn(ctx, id, delta)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listTopLevelFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, postID, parentID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, postID, parentID, limit, offset)
}
func (s *commentRepoStub) UpdateMessage(ctx context.Context, id uint, message string) error {
	return s.updateMessageFn(ctx, id, message)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) (bool, error) {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) ReconcileReplyCounts(ctx context.Context) ([]uint, error) {
	return s.reconcileFn(ctx)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:           func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:          func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		adjustReplyCountFn: func(_ context.Context, _ uint, _ int) error { return nil },
		listTopLevelFn:     func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return []*models.Comment{}, nil },
		listRepliesFn: func(_ context.Context, _, _ uint, _, _ int) ([]*models.Comment, error) {
			return []*models.Comment{}, nil
		},
		updateMessageFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) (bool, error) { return true, nil },
		reconcileFn:     func(_ context.Context) ([]uint, error) { return nil, nil },
	}
}

// graphRepoStub is a stub for repository.GraphRepository.
type graphRepoStub struct {
	insertFollowFn       func(context.Context, uint, uint) (bool, error)
	deleteFollowFn       func(context.Context, uint, uint) (bool, error)
	adjustFollowersFn    func(context.Context, uint, int) error
	followingIDsFn       func(context.Context, uint) ([]uint, error)
	insertSubscriptionFn func(context.Context, uint, uint) (bool, error)
	deleteSubscriptionFn func(context.Context, uint, uint) (bool, error)
	subscribedTierIDsFn  func(context.Context, uint) ([]uint, error)
	reconcileFn          func(context.Context) ([]uint, error)
}

func (s *graphRepoStub) InsertFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.insertFollowFn(ctx, followerID, followeeID)
}
func (s *graphRepoStub) DeleteFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.deleteFollowFn(ctx, followerID, followeeID)
}
func (s *graphRepoStub) AdjustFollowersCount(ctx context.Context, userID uint, delta int) error {
	return s.adjustFollowersFn(ctx, userID, delta)
}
func (s *graphRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *graphRepoStub) InsertSubscription(ctx context.Context, userID, tierID uint) (bool, error) {
	return s.insertSubscriptionFn(ctx, userID, tierID)
}
func (s *graphRepoStub) DeleteSubscription(ctx context.Context, userID, tierID uint) (bool, error) {
	return s.deleteSubscriptionFn(ctx, userID, tierID)
}
func (s *graphRepoStub) SubscribedTierIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.subscribedTierIDsFn(ctx, userID)
}
func (s *graphRepoStub) ReconcileFollowersCounts(ctx context.Context) ([]uint, error) {
	return s.reconcileFn(ctx)
}

func noopGraphRepo() *graphRepoStub {
	return &graphRepoStub{
		insertFollowFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		deleteFollowFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		adjustFollowersFn:    func(_ context.Context, _ uint, _ int) error { return nil },
		followingIDsFn:       func(_ context.Context, _ uint) ([]uint, error) { return []uint{}, nil },
		insertSubscriptionFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		deleteSubscriptionFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		subscribedTierIDsFn:  func(_ context.Context, _ uint) ([]uint, error) { return []uint{}, nil },
		reconcileFn:          func(_ context.Context) ([]uint, error) { return nil, nil },
	}
}

// tierRepoStub is a stub for repository.TierRepository.
type tierRepoStub struct {
	createFn          func(context.Context, *models.Tier) error
	getByIDFn         func(context.Context, uint) (*models.Tier, error)
	updateFn          func(context.Context, *models.Tier) error
	deleteFn          func(context.Context, *models.Tier) error
	listByCreatorFn   func(context.Context, uint) ([]models.Tier, error)
	listWithCountsFn  func(context.Context, uint) ([]models.Tier, error)
	listByIDsFn       func(context.Context, []uint) ([]models.Tier, error)
	countReferencesFn func(context.Context, uint) (int64, error)
}

func (s *tierRepoStub) Create(ctx context.Context, tier *models.Tier) error {
	return s.createFn(ctx, tier)
}
func (s *tierRepoStub) GetByID(ctx context.Context, id uint) (*models.Tier, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tierRepoStub) Update(ctx context.Context, tier *models.Tier) error {
	return s.updateFn(ctx, tier)
}
func (s *tierRepoStub) Delete(ctx context.Context, tier *models.Tier) error {
	return s.deleteFn(ctx, tier)
}
func (s *tierRepoStub) ListByCreator(ctx context.Context, creatorID uint) ([]models.Tier, error) {
	return s.listByCreatorFn(ctx, creatorID)
}
func (s *tierRepoStub) ListByCreatorWithCounts(ctx context.Context, creatorID uint) ([]models.Tier, error) {
	return s.listWithCountsFn(ctx, creatorID)
}
func (s *tierRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]models.Tier, error) {
	return s.listByIDsFn(ctx, ids)
}
func (s *tierRepoStub) CountReferencingPosts(ctx context.Context, tierID uint) (int64, error) {
	return s.countReferencesFn(ctx, tierID)
}

func noopTierRepo() *tierRepoStub {
	return &tierRepoStub{
		createFn:          func(_ context.Context, _ *models.Tier) error { return nil },
		getByIDFn:         func(_ context.Context, id uint) (*models.Tier, error) { return &models.Tier{ID: id}, nil },
		updateFn:          func(_ context.Context, _ *models.Tier) error { return nil },
		deleteFn:          func(_ context.Context, _ *models.Tier) error { return nil },
		listByCreatorFn:   func(_ context.Context, _ uint) ([]models.Tier, error) { return []models.Tier{}, nil },
		listWithCountsFn:  func(_ context.Context, _ uint) ([]models.Tier, error) { return []models.Tier{}, nil },
		listByIDsFn:       func(_ context.Context, _ []uint) ([]models.Tier, error) { return []models.Tier{}, nil },
		countReferencesFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getCredentialsFn func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByHandleFn    func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updateFn         func(context.Context, *models.User) error
	updatePasswordFn func(context.Context, uint, string) error
	searchFn         func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetCredentials(ctx context.Context, id uint) (*models.User, error) {
	return s.getCredentialsFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	return s.getByHandleFn(ctx, handle)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleConsumer}, nil
		},
		getCredentialsFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByHandleFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:         func(_ context.Context, _ *models.User) error { return nil },
		updateFn:         func(_ context.Context, _ *models.User) error { return nil },
		updatePasswordFn: func(_ context.Context, _ uint, _ string) error { return nil },
		searchFn:         func(_ context.Context, _ string, _, _ int) ([]models.User, error) { return []models.User{}, nil },
	}
}

// mealRepoStub is a stub for repository.MealRepository.
type mealRepoStub struct {
	createFn        func(context.Context, *models.Meal) error
	getByIDFn       func(context.Context, uint) (*models.Meal, error)
	listByCreatorFn func(context.Context, uint, int, int) ([]models.Meal, error)
}

func (s *mealRepoStub) Create(ctx context.Context, meal *models.Meal) error {
	return s.createFn(ctx, meal)
}
func (s *mealRepoStub) GetByID(ctx context.Context, id uint) (*models.Meal, error) {
	return s.getByIDFn(ctx, id)
}
func (s *mealRepoStub) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.Meal, error) {
	return s.listByCreatorFn(ctx, creatorID, limit, offset)
}

func noopMealRepo() *mealRepoStub {
	return &mealRepoStub{
		createFn:        func(_ context.Context, _ *models.Meal) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Meal, error) { return &models.Meal{ID: id}, nil },
		listByCreatorFn: func(_ context.Context, _ uint, _, _ int) ([]models.Meal, error) { return []models.Meal{}, nil },
	}
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

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

func seedTier(t *testing.T, db *gorm.DB, creatorID uint) *models.Tier {
	t.Helper()
	tier := &models.Tier{
		CreatorID:   creatorID,
		Title:       gofakeit.BuzzWord(),
		Description: gofakeit.Sentence(6),
		Price:       4.99,
		Currency:    models.CurrencyEUR,
		Level:       1,
	}
	require.NoError(t, db.Omit("Creator").Create(tier).Error)
	return tier
}

func seedPost(t *testing.T, db *gorm.DB, creatorID uint, tierID *uint, date time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		CreatorID:     creatorID,
		TierID:        tierID,
		Title:         gofakeit.Sentence(3),
		Type:          models.PostTypeNormal,
		Date:          date,
		AllowComments: true,
		Ingredients:   []string{"rice"},
	}
	require.NoError(t, db.Omit("Creator", "Meal").Create(p).Error)
	return p
}

func seedMeal(t *testing.T, db *gorm.DB, creatorID uint) *models.Meal {
	t.Helper()
	m := &models.Meal{
		CreatorID:   creatorID,
		Title:       "Shakshuka",
		Description: gofakeit.Sentence(6),
		Media:       []string{},
		Steps: []models.MealStep{
			{Title: "Simmer", Description: "Cook the sauce", Media: []string{}},
		},
		MealType:       "Breakfast",
		DietaryOptions: []string{"Vegetarian"},
		MealPrep:       "One-Pan / One-Bowl",
		Ingredients:    []models.Ingredient{{Name: "eggs"}, {Name: "tomatoes"}},
		ServingSize:    2,
		Notes:          []string{},
		Macros:         []models.Macro{},
		TimeToMake:     "Under 30 minutes",
		KCal:           420,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func uintPtr(v uint) *uint { return &v }
