package service

import (
	"context"
	"testing"
	"time"

	"nourish/internal/models"
	"nourish/internal/repository"
	"nourish/internal/visibility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_Validation(t *testing.T) {
	t.Parallel()

	creator := visibility.Identified(1, models.RoleCreator, nil)

	tests := []struct {
		name  string
		actor visibility.Viewer
		in    PostInput
		code  string
	}{
		{"consumer cannot publish", visibility.Identified(2, models.RoleConsumer, nil), PostInput{Title: "t"}, models.CodeForbidden},
		{"missing title", creator, PostInput{Title: " "}, models.CodeValidation},
		{"unknown type", creator, PostInput{Title: "t", Type: "Essay"}, models.CodeValidation},
		{"unknown aspect ratio", creator, PostInput{Title: "t", AspectRatio: "wide"}, models.CodeValidation},
		{"unknown dietary option", creator, PostInput{Title: "t", DietaryOptions: []string{"Vegan", "Carnivore"}}, models.CodeValidation},
		{"meal post without meal", creator, PostInput{Title: "t", Type: "Meal"}, models.CodeValidation},
		{"meal on a normal post", creator, PostInput{Title: "t", MealID: uintPtr(4)}, models.CodeValidation},
		{"meal on an explicit normal post", creator, PostInput{Title: "t", Type: "Normal", MealID: uintPtr(4)}, models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			posts := noopPostRepo()
			posts.createFn = func(_ context.Context, _ *models.Post) error {
				t.Fatal("create must not be called")
				return nil
			}
			_, err := NewPostService(posts, noopTierRepo(), noopMealRepo()).CreatePost(context.Background(), tt.actor, tt.in)
			assertCode(t, err, tt.code)
		})
	}
}

func TestCreatePost_References(t *testing.T) {
	t.Parallel()

	creator := visibility.Identified(1, models.RoleCreator, nil)

	tiers := noopTierRepo()
	tiers.getByIDFn = func(_ context.Context, id uint) (*models.Tier, error) {
		switch id {
		case 1:
			return &models.Tier{ID: 1, CreatorID: 1}, nil
		case 2:
			return &models.Tier{ID: 2, CreatorID: 99}, nil
		}
		return nil, models.NewNotFoundError("Tier", id)
	}
	meals := noopMealRepo()
	meals.getByIDFn = func(_ context.Context, id uint) (*models.Meal, error) {
		switch id {
		case 6:
			return &models.Meal{ID: 6, CreatorID: 99}, nil
		case 7:
			return &models.Meal{ID: 7, CreatorID: 1}, nil
		}
		return nil, models.NewNotFoundError("Meal", id)
	}
	svc := NewPostService(noopPostRepo(), tiers, meals)

	_, err := svc.CreatePost(context.Background(), creator, PostInput{Title: "t", TierID: uintPtr(2)})
	assertCode(t, err, models.CodeForbidden)

	_, err = svc.CreatePost(context.Background(), creator, PostInput{Title: "t", TierID: uintPtr(3)})
	assertCode(t, err, models.CodeInvalidReference)

	_, err = svc.CreatePost(context.Background(), creator, PostInput{Title: "t", Type: "Meal", MealID: uintPtr(5)})
	assertCode(t, err, models.CodeInvalidReference)

	_, err = svc.CreatePost(context.Background(), creator, PostInput{Title: "t", Type: "Meal", MealID: uintPtr(6)})
	assertCode(t, err, models.CodeForbidden)

	mealPost, err := svc.CreatePost(context.Background(), creator, PostInput{Title: "t", Type: "Meal", MealID: uintPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, models.PostTypeMeal, mealPost.Type)

	post, err := svc.CreatePost(context.Background(), creator, PostInput{Title: "t", TierID: uintPtr(1)})
	require.NoError(t, err)
	assert.True(t, post.Gated())
	assert.True(t, post.AllowComments)
	assert.Equal(t, models.PostTypeNormal, post.Type)
	assert.Equal(t, models.AspectSquare, post.AspectRatio)
	assert.NotNil(t, post.Media)
	assert.False(t, post.Date.IsZero())
}

func TestPostOwnership(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getSummaryFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, CreatorID: 10}, nil
	}
	posts.deleteFn = func(_ context.Context, _ uint) error {
		t.Fatal("delete must not be called")
		return nil
	}
	svc := NewPostService(posts, noopTierRepo(), noopMealRepo())
	ctx := context.Background()

	admin := visibility.Identified(11, models.RoleAdmin, nil)
	assertCode(t, svc.DeletePost(ctx, admin, 1), models.CodeForbidden)
	_, err := svc.UpdatePost(ctx, admin, 1, PostInput{Title: "t"})
	assertCode(t, err, models.CodeForbidden)
	assertCode(t, svc.DeletePost(ctx, visibility.Anonymous(), 1), models.CodeForbidden)
}

func TestPostService_Integration(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	creator := seedUser(t, db, models.RoleCreator)
	fan := seedUser(t, db, models.RoleConsumer)
	tier := seedTier(t, db, creator.ID)

	svc := NewPostService(repository.NewPostRepository(db), repository.NewTierRepository(db), repository.NewMealRepository(db))
	ctx := t.Context()
	owner := visibility.Identified(creator.ID, models.RoleCreator, nil)

	post, err := svc.CreatePost(ctx, owner, PostInput{
		Title:       "Protein pancakes",
		TierID:      &tier.ID,
		Ingredients: []string{"oats", "eggs"},
		StepByStep:  []string{"blend", "fry"},
		Documents:   []string{"https://cdn.example.com/plan.pdf"},
	})
	require.NoError(t, err)
	created := post.Date

	locked, err := svc.GetPost(ctx, visibility.Identified(fan.ID, models.RoleConsumer, nil), post.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)
	assert.Empty(t, locked.Ingredients)
	assert.Empty(t, locked.Documents)
	require.NotNil(t, locked.Creator)
	assert.Empty(t, locked.Creator.Email)

	full, err := svc.GetPost(ctx, visibility.Identified(fan.ID, models.RoleConsumer, []uint{tier.ID}), post.ID)
	require.NoError(t, err)
	assert.False(t, full.Locked)
	assert.Equal(t, []string{"oats", "eggs"}, []string(full.Ingredients))

	time.Sleep(5 * time.Millisecond)
	updated, err := svc.UpdatePost(ctx, owner, post.ID, PostInput{Title: "Pancakes v2", Ingredients: []string{"oats"}})
	require.NoError(t, err)
	assert.Equal(t, "Pancakes v2", updated.Title)
	assert.False(t, updated.Gated())
	assert.True(t, created.Equal(updated.Date))

	require.NoError(t, svc.LikePost(ctx, fan.ID, post.ID))
	require.NoError(t, svc.LikePost(ctx, fan.ID, post.ID))
	liked, err := svc.LikedPosts(ctx, visibility.Identified(fan.ID, models.RoleConsumer, nil), 10, 0)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.True(t, liked[0].Liked)
	assert.Equal(t, 1, liked[0].LikesCount)

	require.NoError(t, svc.UnlikePost(ctx, fan.ID, post.ID))
	liked, err = svc.LikedPosts(ctx, visibility.Identified(fan.ID, models.RoleConsumer, nil), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, liked)

	assertCode(t, svc.LikePost(ctx, fan.ID, 9999), models.CodeNotFound)

	require.NoError(t, svc.DeletePost(ctx, owner, post.ID))
	_, err = svc.GetPost(ctx, owner, post.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_MealReferencedOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	alice := seedUser(t, db, models.RoleCreator)
	bob := seedUser(t, db, models.RoleCreator)
	tier := seedTier(t, db, alice.ID)
	meal := seedMeal(t, db, alice.ID)

	svc := NewPostService(repository.NewPostRepository(db), repository.NewTierRepository(db), repository.NewMealRepository(db))
	ctx := t.Context()
	asAlice := visibility.Identified(alice.ID, models.RoleCreator, nil)

	gated, err := svc.CreatePost(ctx, asAlice, PostInput{Title: "Members shakshuka", Type: "Meal", MealID: &meal.ID, TierID: &tier.ID})
	require.NoError(t, err)

	// someone else's gated meal cannot be republished for free
	_, err = svc.CreatePost(ctx, visibility.Identified(bob.ID, models.RoleCreator, nil),
		PostInput{Title: "Free shakshuka", Type: "Meal", MealID: &meal.ID})
	assertCode(t, err, models.CodeForbidden)

	// nor by its owner through a second post
	_, err = svc.CreatePost(ctx, asAlice, PostInput{Title: "Free shakshuka", Type: "Meal", MealID: &meal.ID})
	assertCode(t, err, models.CodeConflict)

	other, err := svc.CreatePost(ctx, asAlice, PostInput{Title: "Plain"})
	require.NoError(t, err)
	_, err = svc.UpdatePost(ctx, asAlice, other.ID, PostInput{Title: "Plain", Type: "Meal", MealID: &meal.ID})
	assertCode(t, err, models.CodeConflict)

	anon, err := svc.GetPost(ctx, visibility.Anonymous(), gated.ID)
	require.NoError(t, err)
	assert.True(t, anon.Locked)
	require.NotNil(t, anon.Meal)
	assert.Empty(t, anon.Meal.Ingredients)
	assert.Empty(t, anon.Meal.Steps)

	// the owner may keep the reference when editing the same post
	_, err = svc.UpdatePost(ctx, asAlice, gated.ID, PostInput{Title: "Members shakshuka v2", Type: "Meal", MealID: &meal.ID, TierID: &tier.ID})
	require.NoError(t, err)

	// deleting the post frees the meal
	require.NoError(t, svc.DeletePost(ctx, asAlice, gated.ID))
	_, err = svc.CreatePost(ctx, asAlice, PostInput{Title: "Free shakshuka", Type: "Meal", MealID: &meal.ID})
	require.NoError(t, err)
}
