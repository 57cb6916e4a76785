// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "Seed-Password-123!"

// Plan describes how much data a seeding run creates. It is usually loaded
// from a YAML file; zero fields fall back to DefaultPlan values.
type Plan struct {
	// RandSeed makes runs reproducible. Zero seeds from the clock.
	RandSeed int64 `yaml:"rand_seed"`
	Clean    bool  `yaml:"clean"`
	// MaxDays spreads post dates over the last N days.
	MaxDays  int    `yaml:"max_days"`
	Password string `yaml:"password"`

	Creators  int `yaml:"creators"`
	Consumers int `yaml:"consumers"`

	TiersPerCreator int `yaml:"tiers_per_creator"`
	MealsPerCreator int `yaml:"meals_per_creator"`
	PostsPerCreator int `yaml:"posts_per_creator"`
	// GatedPercent is the share of posts attached to one of the creator's tiers.
	GatedPercent int `yaml:"gated_percent"`

	FollowsPerUser       int `yaml:"follows_per_user"`
	SubscriptionsPerUser int `yaml:"subscriptions_per_user"`
	LikesPerPost         int `yaml:"likes_per_post"`
	CommentsPerPost      int `yaml:"comments_per_post"`
	RepliesPerComment    int `yaml:"replies_per_comment"`
}

// DefaultPlan is a small but fully connected data set.
func DefaultPlan() Plan {
	return Plan{
		Clean:                true,
		MaxDays:              90,
		Password:             DefaultPassword,
		Creators:             5,
		Consumers:            20,
		TiersPerCreator:      2,
		MealsPerCreator:      3,
		PostsPerCreator:      10,
		GatedPercent:         40,
		FollowsPerUser:       4,
		SubscriptionsPerUser: 2,
		LikesPerPost:         5,
		CommentsPerPost:      3,
		RepliesPerComment:    2,
	}
}

// LoadPlan reads a YAML plan from path.
func LoadPlan(path string) (Plan, error) {
	raw, err := os.ReadFile(path) // #nosec G304: operator-provided plan file
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	return ParsePlan(raw)
}

// ParsePlan decodes a YAML plan over DefaultPlan and validates it.
func ParsePlan(raw []byte) (Plan, error) {
	plan := DefaultPlan()
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Validate rejects negative counts and impossible ratios.
func (p Plan) Validate() error {
	counts := map[string]int{
		"creators":               p.Creators,
		"consumers":              p.Consumers,
		"tiers_per_creator":      p.TiersPerCreator,
		"meals_per_creator":      p.MealsPerCreator,
		"posts_per_creator":      p.PostsPerCreator,
		"follows_per_user":       p.FollowsPerUser,
		"subscriptions_per_user": p.SubscriptionsPerUser,
		"likes_per_post":         p.LikesPerPost,
		"comments_per_post":      p.CommentsPerPost,
		"replies_per_comment":    p.RepliesPerComment,
		"max_days":               p.MaxDays,
	}
	for name, v := range counts {
		if v < 0 {
			return fmt.Errorf("plan: %s must not be negative", name)
		}
	}
	if p.GatedPercent < 0 || p.GatedPercent > 100 {
		return fmt.Errorf("plan: gated_percent must be between 0 and 100")
	}
	if p.Password == "" {
		return fmt.Errorf("plan: password is required")
	}
	return nil
}
