package models

import (
	"time"

	"gorm.io/gorm"
)

// Currency is the billing currency of a tier.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
	CurrencyRON Currency = "RON"
	CurrencyCHF Currency = "CHF"
)

// Currencies lists every accepted currency.
var Currencies = []Currency{CurrencyEUR, CurrencyGBP, CurrencyUSD, CurrencyRON, CurrencyCHF}

// Tier goals.
const (
	GoalFatLoss    = "Fat Loss"
	GoalMuscleGain = "Muscle Gain"
)

// TierGoals lists the accepted non-empty goals.
var TierGoals = []string{GoalFatLoss, GoalMuscleGain}

const (
	MinTierLevel = 1
	MaxTierLevel = 4
)

// Tier is a creator-defined access tier that posts can be gated behind.
type Tier struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	CreatorID   uint     `gorm:"not null;index" json:"creator_id"`
	Creator     *User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Price       float64  `gorm:"not null" json:"price"`
	Currency    Currency `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	Goal        string   `gorm:"type:varchar(32)" json:"goal,omitempty"`
	Level       int      `gorm:"not null;default:1" json:"level"`
	CoverPhoto  string   `json:"cover_photo,omitempty"`
	// SubscriberCount is not persisted; filled for the owner's listing.
	SubscriberCount int            `gorm:"->;-:migration" json:"subscriber_count"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
