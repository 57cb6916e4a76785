package seed

import (
	"regexp"
	"testing"
	"time"

	"nourish/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{1,28}[a-z0-9]$`)

func dryFactory() *Factory {
	return NewFactory(nil, Options{DryRun: true, MaxDays: 30, HashCost: bcrypt.MinCost, RandSeed: 7})
}

func TestFactory_CreateUser(t *testing.T) {
	f := dryFactory()

	a, err := f.CreateUser(models.RoleCreator)
	require.NoError(t, err)
	b, err := f.CreateUser(models.RoleSpecialist)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Handle, b.Handle)
	assert.Regexp(t, handlePattern, a.Handle)
	assert.Empty(t, a.ProfessionProof)
	assert.NotEmpty(t, b.ProfessionProof)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(DefaultPassword)))
	// the hash is shared across accounts
	assert.Equal(t, a.Password, b.Password)
}

func TestFactory_HandleSanitizes(t *testing.T) {
	f := dryFactory()
	assert.Equal(t, "zo_1", f.handle("Zoë"))
	assert.Equal(t, "cook_2", f.handle("李"))
	assert.Regexp(t, handlePattern, f.handle("Maximiliano-Alexander-Fitzgerald"))
}

func TestFactory_CreateTierClampsLevel(t *testing.T) {
	f := dryFactory()
	creator := &models.User{ID: 1}

	tier, err := f.CreateTier(creator, 9)
	require.NoError(t, err)
	assert.Equal(t, models.MaxTierLevel, tier.Level)
	assert.Contains(t, models.Currencies, tier.Currency)
	assert.Contains(t, models.TierGoals, tier.Goal)
	assert.Greater(t, tier.Price, 0.0)
}

func TestFactory_BuildPost(t *testing.T) {
	f := dryFactory()
	creator := &models.User{ID: 3}
	tier := &models.Tier{ID: 11}
	meal := &models.Meal{ID: 21, Title: "Shakshuka"}

	free := f.BuildPost(creator, nil, nil)
	assert.Nil(t, free.TierID)
	assert.Nil(t, free.MealID)
	assert.NotEmpty(t, free.Ingredients)
	assert.Contains(t, models.AspectRatios, free.AspectRatio)
	assert.WithinDuration(t, time.Now(), free.Date, 31*24*time.Hour)

	gated := f.BuildPost(creator, tier, meal, func(p *models.Post) { p.AllowComments = false })
	require.NotNil(t, gated.TierID)
	assert.Equal(t, uint(11), *gated.TierID)
	assert.Equal(t, uint(21), *gated.MealID)
	assert.Equal(t, models.PostTypeMeal, gated.Type)
	assert.Equal(t, "Shakshuka", gated.Title)
	assert.False(t, gated.AllowComments)

	require.NoError(t, f.CreatePostsBatch([]*models.Post{free, gated}))
	assert.NotZero(t, free.ID)
	assert.NotEqual(t, free.ID, gated.ID)
}

func TestPick(t *testing.T) {
	f := dryFactory()
	items := []int{1, 2, 3, 4, 5}

	got := pick(f, items, 3, 2)
	assert.Len(t, got, 3)
	assert.NotContains(t, got, 2)

	all := pick(f, items, 10, 5)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, all)
	// the source slice is untouched
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
}
