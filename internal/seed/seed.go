package seed

import (
	"context"
	"fmt"
	"log/slog"

	"nourish/internal/models"
	"nourish/internal/observability"
	"nourish/internal/repository"
	"nourish/internal/service"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Summary counts what a seeding run created.
type Summary struct {
	Creators      int `json:"creators"`
	Consumers     int `json:"consumers"`
	Tiers         int `json:"tiers"`
	Meals         int `json:"meals"`
	Posts         int `json:"posts"`
	GatedPosts    int `json:"gated_posts"`
	Follows       int `json:"follows"`
	Subscriptions int `json:"subscriptions"`
	Likes         int `json:"likes"`
	Comments      int `json:"comments"`
	Replies       int `json:"replies"`

	Reconciled *service.ReconcileReport `json:"reconciled,omitempty"`
}

// Seeder populates the database according to a Plan.
type Seeder struct {
	db      *gorm.DB
	plan    Plan
	factory *Factory
	logger  *slog.Logger
}

// NewSeeder binds a Plan to db. hashCost of zero uses bcrypt's default.
func NewSeeder(db *gorm.DB, plan Plan, hashCost int) *Seeder {
	return &Seeder{
		db:   db,
		plan: plan,
		factory: NewFactory(db, Options{
			MaxDays:  plan.MaxDays,
			Password: plan.Password,
			HashCost: hashCost,
			RandSeed: plan.RandSeed,
		}),
		logger: observability.GlobalLogger,
	}
}

// clearOrder deletes children before parents.
var clearOrder = []any{
	&models.Like{},
	&models.Comment{},
	&models.Post{},
	&models.Meal{},
	&models.TierSubscription{},
	&models.Tier{},
	&models.Follow{},
	&models.User{},
}

// ClearAll hard-deletes every seeded table.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range clearOrder {
		if err := db.Unscoped().Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	s.logger.InfoContext(ctx, "seed: cleared existing data")
	return nil
}

// Run executes the plan and reconciles the denormalized counters.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if err := s.plan.Validate(); err != nil {
		return nil, err
	}
	if s.plan.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	f := s.factory

	creators := make([]*models.User, 0, s.plan.Creators)
	for i := 0; i < s.plan.Creators; i++ {
		role := lo.Ternary(i%3 == 2, models.RoleSpecialist, models.RoleCreator)
		u, err := f.CreateUser(role)
		if err != nil {
			return nil, err
		}
		creators = append(creators, u)
	}
	sum.Creators = len(creators)

	consumers := make([]*models.User, 0, s.plan.Consumers)
	for i := 0; i < s.plan.Consumers; i++ {
		u, err := f.CreateUser(models.RoleConsumer)
		if err != nil {
			return nil, err
		}
		consumers = append(consumers, u)
	}
	sum.Consumers = len(consumers)

	tiersByCreator := make(map[uint][]*models.Tier, len(creators))
	var allTiers []*models.Tier
	for _, c := range creators {
		for level := 1; level <= s.plan.TiersPerCreator; level++ {
			t, err := f.CreateTier(c, level)
			if err != nil {
				return nil, err
			}
			tiersByCreator[c.ID] = append(tiersByCreator[c.ID], t)
			allTiers = append(allTiers, t)
		}
	}
	sum.Tiers = len(allTiers)

	mealsByCreator := make(map[uint][]*models.Meal, len(creators))
	for _, c := range creators {
		for i := 0; i < s.plan.MealsPerCreator; i++ {
			m, err := f.CreateMeal(c)
			if err != nil {
				return nil, err
			}
			mealsByCreator[c.ID] = append(mealsByCreator[c.ID], m)
			sum.Meals++
		}
	}
	s.logger.InfoContext(ctx, "seed: accounts, tiers and meals created",
		slog.Int("creators", sum.Creators),
		slog.Int("consumers", sum.Consumers),
		slog.Int("tiers", sum.Tiers),
		slog.Int("meals", sum.Meals),
	)

	var posts []*models.Post
	for _, c := range creators {
		tiers, meals := tiersByCreator[c.ID], mealsByCreator[c.ID]
		nextMeal := 0
		for i := 0; i < s.plan.PostsPerCreator; i++ {
			var tier *models.Tier
			if len(tiers) > 0 && f.faker.Number(1, 100) <= s.plan.GatedPercent {
				tier = tiers[f.faker.Number(0, len(tiers)-1)]
				sum.GatedPosts++
			}
			var meal *models.Meal
			// a meal backs at most one post
			if i%2 == 1 && nextMeal < len(meals) {
				meal = meals[nextMeal]
				nextMeal++
			}
			posts = append(posts, f.BuildPost(c, tier, meal))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	sum.Posts = len(posts)

	everyone := append(append([]*models.User{}, creators...), consumers...)
	for _, u := range everyone {
		for _, target := range pick(f, creators, s.plan.FollowsPerUser, u) {
			if err := f.CreateFollow(u, target); err != nil {
				return nil, err
			}
			sum.Follows++
		}
	}

	for _, u := range consumers {
		for _, t := range pick(f, allTiers, s.plan.SubscriptionsPerUser, nil) {
			if err := f.CreateSubscription(u, t); err != nil {
				return nil, err
			}
			sum.Subscriptions++
		}
	}

	for _, p := range posts {
		for _, u := range pick(f, everyone, s.plan.LikesPerPost, nil) {
			if err := f.CreateLike(u, p); err != nil {
				return nil, err
			}
			sum.Likes++
		}
		for i := 0; i < s.plan.CommentsPerPost && len(everyone) > 0; i++ {
			author := everyone[f.faker.Number(0, len(everyone)-1)]
			root, err := f.CreateComment(author, p, nil)
			if err != nil {
				return nil, err
			}
			sum.Comments++
			for j := 0; j < s.plan.RepliesPerComment; j++ {
				replier := everyone[f.faker.Number(0, len(everyone)-1)]
				if _, err := f.CreateComment(replier, p, root); err != nil {
					return nil, err
				}
				sum.Replies++
			}
		}
	}
	s.logger.InfoContext(ctx, "seed: content and engagement created",
		slog.Int("posts", sum.Posts),
		slog.Int("gated_posts", sum.GatedPosts),
		slog.Int("follows", sum.Follows),
		slog.Int("subscriptions", sum.Subscriptions),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
		slog.Int("replies", sum.Replies),
	)

	reconciler := service.NewReconcileService(
		repository.NewGraphRepository(s.db),
		repository.NewCommentRepository(s.db),
	)
	report, err := reconciler.Run(ctx)
	if err != nil {
		return sum, fmt.Errorf("reconcile counters: %w", err)
	}
	sum.Reconciled = report
	return sum, nil
}
