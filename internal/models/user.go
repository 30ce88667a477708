package models

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string    `gorm:"type:varchar(150);not null;uniqueIndex:bkm_users_ux1;column:username"`
	Email        string    `gorm:"type:varchar(254);not null;index:bkm_users_ix_email;column:email"`
	PasswordHash string    `gorm:"type:varchar(128);not null;column:password_hash"`
	FirstName    string    `gorm:"type:varchar(150);not null;default:'';column:first_name"`
	LastName     string    `gorm:"type:varchar(150);not null;default:'';column:last_name"`
	IsActive     bool      `gorm:"not null;default:true;column:is_active"`
	CreatedAt    time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "bkm_users"
}
