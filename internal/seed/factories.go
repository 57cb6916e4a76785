package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"nourish/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Options tune a Factory.
type Options struct {
	// DryRun assigns synthetic IDs instead of writing.
	DryRun   bool
	MaxDays  int
	Password string
	// HashCost is the bcrypt cost for the shared password hash.
	HashCost int
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the Seeder and by tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker

	passwordHash string
	handleSeq    int
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) save(kind string, v any, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		return nil
	}
	if err := f.db.Create(v).Error; err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

func (f *Factory) hashedPassword() (string, error) {
	if f.passwordHash != "" {
		return f.passwordHash, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(f.opts.Password), f.opts.HashCost)
	if err != nil {
		return "", err
	}
	f.passwordHash = string(hash)
	return f.passwordHash, nil
}

// handle derives a unique, valid handle from a first name.
func (f *Factory) handle(first string) string {
	f.handleSeq++
	base := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, first)
	if len(base) > 20 {
		base = base[:20]
	}
	if base == "" {
		base = "cook"
	}
	return fmt.Sprintf("%s_%d", base, f.handleSeq)
}

// pastDate spreads timestamps over the last MaxDays.
func (f *Factory) pastDate() time.Time {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

// CreateUser constructs and persists a sample `models.User` with role.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.hashedPassword()
	if err != nil {
		return nil, err
	}
	first, last := f.faker.FirstName(), f.faker.LastName()
	handle := f.handle(first)
	user := &models.User{
		Email:          handle + "@nourish.test",
		Password:       hash,
		FirstName:      first,
		LastName:       last,
		Handle:         handle,
		Bio:            f.faker.Sentence(10),
		Role:           role,
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Verified:       true,
	}
	if role == models.RoleSpecialist {
		user.ProfessionProof = f.faker.URL()
		user.ProfessionVerified = true
	}

	for _, override := range overrides {
		override(user)
	}
	if err := f.save("user", user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTier persists a tier owned by creator at the given level.
func (f *Factory) CreateTier(creator *models.User, level int, overrides ...func(*models.Tier)) (*models.Tier, error) {
	level = lo.Clamp(level, models.MinTierLevel, models.MaxTierLevel)
	tier := &models.Tier{
		CreatorID:   creator.ID,
		Title:       fmt.Sprintf("%s %s", capitalize(f.faker.Adjective()), lo.Ternary(level > 2, "Pro", "Club")),
		Description: f.faker.Paragraph(1, 2, 8, " "),
		Price:       float64(level)*4 + 0.99,
		Currency:    models.Currencies[f.faker.Number(0, len(models.Currencies)-1)],
		Goal:        f.faker.RandomString(models.TierGoals),
		Level:       level,
		CoverPhoto:  fmt.Sprintf("https://picsum.photos/seed/tier-%s/1200/400", f.faker.UUID()),
	}

	for _, override := range overrides {
		override(tier)
	}
	if err := f.save("tier", tier, func(id uint) { tier.ID = id }); err != nil {
		return nil, err
	}
	return tier, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func (f *Factory) dish() string {
	switch f.faker.Number(0, 3) {
	case 0:
		return f.faker.Breakfast()
	case 1:
		return f.faker.Lunch()
	case 2:
		return f.faker.Dinner()
	default:
		return f.faker.Snack()
	}
}

func (f *Factory) ingredients(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			out = append(out, f.faker.Vegetable())
		} else {
			out = append(out, f.faker.Fruit())
		}
	}
	return lo.Uniq(out)
}

// CreateMeal persists a standalone meal owned by creator.
func (f *Factory) CreateMeal(creator *models.User, overrides ...func(*models.Meal)) (*models.Meal, error) {
	names := f.ingredients(f.faker.Number(3, 7))
	meal := &models.Meal{
		CreatorID:      creator.ID,
		Title:          f.dish(),
		Description:    f.faker.Sentence(12),
		Media:          datatypes.JSONSlice[string]{fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())},
		MealType:       f.faker.RandomString(models.MealTypes),
		DietaryOptions: datatypes.JSONSlice[string]{f.faker.RandomString(models.DietaryOptions)},
		MealPrep:       f.faker.RandomString(models.MealPrepOptions),
		Ingredients: lo.Map(names, func(n string, _ int) models.Ingredient {
			return models.Ingredient{Name: n}
		}),
		ServingSize: float64(f.faker.Number(1, 4)),
		ServingUnit: "unit",
		Steps: datatypes.JSONSlice[models.MealStep]{
			{Title: "Prep", Description: f.faker.Sentence(8)},
			{Title: "Cook", Description: f.faker.Sentence(8)},
		},
		TimeToMake: f.faker.RandomString(models.TimeToMakeOptions),
		KCal:       float64(f.faker.Number(150, 900)),
		Fats:       float64(f.faker.Number(2, 40)),
		Carbs:      float64(f.faker.Number(5, 90)),
		Protein:    float64(f.faker.Number(3, 60)),
	}

	for _, override := range overrides {
		override(meal)
	}
	if err := f.save("meal", meal, func(id uint) { meal.ID = id }); err != nil {
		return nil, err
	}
	return meal, nil
}

// BuildPost constructs a post for creator without persisting it. A non-nil
// tier gates the post; a non-nil meal links it.
func (f *Factory) BuildPost(creator *models.User, tier *models.Tier, meal *models.Meal, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		CreatorID:     creator.ID,
		Title:         f.dish(),
		Description:   f.faker.Paragraph(1, 3, 10, "\n"),
		Type:          models.PostTypeRecipe,
		Date:          f.pastDate(),
		Media:         datatypes.JSONSlice[string]{fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())},
		Documents:     datatypes.JSONSlice[string]{},
		AspectRatio:   f.faker.RandomString(models.AspectRatios),
		Ingredients:   f.ingredients(f.faker.Number(2, 6)),
		StepByStep:    datatypes.JSONSlice[string]{f.faker.Sentence(6), f.faker.Sentence(6)},
		AllowComments: true,
		TimeToMake:    f.faker.RandomString(models.TimeToMakeOptions),
		Calories:      fmt.Sprintf("%d", f.faker.Number(150, 900)),
		NutritionalFacts: datatypes.JSONMap{
			"protein": f.faker.Number(3, 60),
			"carbs":   f.faker.Number(5, 90),
		},
		DietaryOptions: datatypes.JSONSlice[string]{f.faker.RandomString(models.DietaryOptions)},
	}
	if tier != nil {
		post.TierID = &tier.ID
	}
	if meal != nil {
		post.MealID = &meal.ID
		post.Type = models.PostTypeMeal
		post.Title = meal.Title
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		return nil
	}
	if err := f.db.CreateInBatches(posts, 100).Error; err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	return nil
}

// CreateComment persists a comment by user on post. A non-nil parent makes
// it a reply; parent.ReplyCount is left for the reconcile sweep.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Message: f.faker.Sentence(f.faker.Number(4, 14)),
		Date:    f.pastDate(),
	}
	if parent != nil {
		comment.RepliedToID = &parent.ID
	}
	if err := f.save("comment", comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.save("like", like, func(id uint) { like.ID = id })
}

// CreateFollow persists a follow edge. followers_count is left for the
// reconcile sweep.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	edge := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
	return f.save("follow", edge, func(id uint) { edge.ID = id })
}

// CreateSubscription persists a subscription of user to tier.
func (f *Factory) CreateSubscription(user *models.User, tier *models.Tier) error {
	edge := &models.TierSubscription{UserID: user.ID, TierID: tier.ID}
	return f.save("subscription", edge, func(id uint) { edge.ID = id })
}

// pick returns up to n distinct elements of items, never including skip.
func pick[T comparable](f *Factory, items []T, n int, skip T) []T {
	candidates := lo.Filter(items, func(it T, _ int) bool { return it != skip })
	if n >= len(candidates) {
		return candidates
	}
	f.faker.ShuffleAnySlice(candidates)
	return candidates[:n]
}
