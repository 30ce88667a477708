package models

import (
	"database/sql"
	"time"
)

// Action is one entry in the activity log: an actor, a verb phrase, and an
// optional target. Rows are append-only; nothing in the normal flow updates
// or deletes them.
type Action struct {
	ID         int64          `gorm:"primaryKey;autoIncrement;column:id"`
	UserID     int64          `gorm:"not null;index:bkm_actions_ix_user;column:user_id"`
	Verb       string         `gorm:"type:varchar(255);not null;column:verb"`
	TargetType sql.NullString `gorm:"type:varchar(32);column:target_type"`
	TargetID   sql.NullInt64  `gorm:"column:target_id"`
	CreatedAt  time.Time      `gorm:"not null;index:bkm_actions_ix_created,sort:desc;column:created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Action
func (Action) TableName() string {
	return "bkm_actions"
}

// Target type constants
const (
	TargetTypeUser  = "user"
	TargetTypeImage = "image"
	TargetTypePost  = "post"
)

// Verb phrases recorded by the mutating flows
const (
	VerbCreatedAccount = "has created an account."
	VerbIsFollowing    = "is following"
	VerbBookmarked     = "bookmarked image"
	VerbLikes          = "likes"
	VerbPublishes      = "publishes a post"
)
