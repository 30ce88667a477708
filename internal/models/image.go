package models

import (
	"time"
)

// Image is a bookmarked remote image. UsersLike is the like-set; TotalLikes
// is recomputed from the join table after every like-set mutation rather
// than maintained incrementally.
type Image struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64     `gorm:"not null;index:bkm_images_ix_user;column:user_id"`
	Title       string    `gorm:"type:varchar(200);not null;column:title"`
	Slug        string    `gorm:"type:varchar(200);not null;index:bkm_images_ix_slug;column:slug"`
	URL         string    `gorm:"type:varchar(2000);not null;column:url"`
	Image       string    `gorm:"type:varchar(255);not null;column:image"`
	Description string    `gorm:"type:text;not null;default:'';column:description"`
	TotalLikes  int64     `gorm:"not null;default:0;index:bkm_images_ix_likes,sort:desc;column:total_likes"`
	CreatedAt   time.Time `gorm:"not null;index:bkm_images_ix_created,sort:desc;column:created_at"`

	// Relationships
	User      *User   `gorm:"foreignKey:UserID;references:ID"`
	UsersLike []*User `gorm:"many2many:bkm_images_likes;joinForeignKey:ImageID;joinReferences:UserID"`
}

// TableName specifies the table name for Image
func (Image) TableName() string {
	return "bkm_images"
}

// ImageLike is the like-set join row for an image
type ImageLike struct {
	ImageID int64 `gorm:"primaryKey;column:image_id"`
	UserID  int64 `gorm:"primaryKey;column:user_id"`
}

// TableName specifies the table name for ImageLike
func (ImageLike) TableName() string {
	return "bkm_images_likes"
}
