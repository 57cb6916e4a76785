// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the account role. It governs creation rights only.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleCreator    Role = "Creator"
	RoleSpecialist Role = "Specialist"
	RoleConsumer   Role = "Consumer"
)

// Roles lists every accepted role.
var Roles = []Role{RoleAdmin, RoleCreator, RoleSpecialist, RoleConsumer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User represents an account on the platform.
type User struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Email              string `gorm:"uniqueIndex;not null" json:"email"`
	Password           string `gorm:"not null" json:"-"`
	FirstName          string `gorm:"not null" json:"first_name"`
	LastName           string `gorm:"not null" json:"last_name"`
	Handle             string `gorm:"uniqueIndex;not null" json:"handle"`
	Bio                string `json:"bio"`
	Role               Role   `gorm:"type:varchar(20);not null;default:'Consumer'" json:"role"`
	ProfilePicture     string `json:"profile_picture"`
	Verified           bool   `gorm:"default:false" json:"verified"`
	ProfessionProof    string `json:"profession_proof,omitempty"`
	ProfessionVerified bool   `gorm:"default:false" json:"profession_verified"`
	// FollowersCount is maintained incrementally by follow/unfollow and
	// repaired by the reconciliation sweep.
	FollowersCount int            `gorm:"not null;default:0" json:"followers_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Following and Subscribed are populated from the edge tables on demand.
	Following  []uint `gorm:"-" json:"following,omitempty"`
	Subscribed []uint `gorm:"-" json:"subscribed,omitempty"`
}

// CanAuthor reports whether the role may create posts, tiers and meals.
func (r Role) CanAuthor() bool {
	return r == RoleAdmin || r == RoleCreator || r == RoleSpecialist
}
