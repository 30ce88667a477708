package models

import (
	"time"
)

// Comment represents a reader comment on a post
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    int64     `gorm:"not null;index:bkm_comments_ix_post;column:post_id"`
	Name      string    `gorm:"type:varchar(80);not null;column:name"`
	Email     string    `gorm:"type:varchar(254);not null;column:email"`
	Body      string    `gorm:"type:text;not null;column:body"`
	Active    bool      `gorm:"not null;default:true;column:active"`
	CreatedAt time.Time `gorm:"not null;index:bkm_comments_ix_created;column:created_at"`

	// Relationships
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "bkm_comments"
}
