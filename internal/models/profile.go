package models

import (
	"database/sql"
)

// Profile holds the auxiliary per-user record. At most one exists per user;
// it is created with the account, or lazily on first authenticated request
// for accounts that predate the profile table.
type Profile struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64          `gorm:"not null;uniqueIndex:bkm_profiles_ux1;column:user_id"`
	DateOfBirth sql.NullTime   `gorm:"column:date_of_birth"`
	Photo       sql.NullString `gorm:"type:varchar(255);column:photo"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "bkm_profiles"
}
