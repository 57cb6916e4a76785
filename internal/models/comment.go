package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a comment on a post. RepliedToID, when set, names a comment on
// the same post; ReplyCount counts comments whose RepliedToID is this ID.
type Comment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PostID      uint   `gorm:"not null;index:idx_comments_thread" json:"post_id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RepliedToID *uint  `gorm:"index:idx_comments_thread" json:"replied_to"`
	Message     string `gorm:"type:text;not null" json:"message"`
	// Date is set once at creation and drives listing order.
	Date       time.Time      `gorm:"not null" json:"date"`
	ReplyCount int            `gorm:"not null;default:0" json:"reply_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
