package models

import (
	"time"
)

// Post represents a blog post
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorID  int64     `gorm:"not null;index:bkm_posts_ix_author;column:author_id"`
	Title     string    `gorm:"type:varchar(250);not null;column:title"`
	Slug      string    `gorm:"type:varchar(250);not null;uniqueIndex:bkm_posts_ux_slug;column:slug"`
	Body      string    `gorm:"type:text;not null;column:body"`
	Status    string    `gorm:"type:varchar(2);not null;default:'DF';column:status"`
	Publish   time.Time `gorm:"not null;index:bkm_posts_ix_publish,sort:desc;column:publish"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Author   *User     `gorm:"foreignKey:AuthorID;references:ID"`
	Tags     []*Tag    `gorm:"many2many:bkm_posts_tags;joinForeignKey:PostID;joinReferences:TagID"`
	Comments []Comment `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "bkm_posts"
}

// Post status constants. The transition is one-way: a draft can be
// published, a published post never reverts.
const (
	PostStatusDraft     = "DF"
	PostStatusPublished = "PB"
)

// Tag is a label attached to posts
type Tag struct {
	ID   int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex:bkm_tags_ux1;column:name"`
	Slug string `gorm:"type:varchar(50);not null;uniqueIndex:bkm_tags_ux2;column:slug"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "bkm_tags"
}

// PostTag is the post-to-tag join row
type PostTag struct {
	PostID int64 `gorm:"primaryKey;column:post_id"`
	TagID  int64 `gorm:"primaryKey;column:tag_id"`
}

// TableName specifies the table name for PostTag
func (PostTag) TableName() string {
	return "bkm_posts_tags"
}
