package models

import (
	"time"
)

// Contact is a directed follow edge. The (from, to) pair is unique; an edge
// A→B says nothing about B→A. Edges are listed most-recent-first via the
// per-direction created_at indexes.
type Contact struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	FromUserID int64     `gorm:"not null;uniqueIndex:bkm_contacts_ux1,priority:1;index:bkm_contacts_ix_from,priority:1;column:from_user_id"`
	ToUserID   int64     `gorm:"not null;uniqueIndex:bkm_contacts_ux1,priority:2;index:bkm_contacts_ix_to,priority:1;column:to_user_id"`
	CreatedAt  time.Time `gorm:"not null;index:bkm_contacts_ix_from,priority:2,sort:desc;index:bkm_contacts_ix_to,priority:2,sort:desc;column:created_at"`

	// Relationships
	FromUser *User `gorm:"foreignKey:FromUserID;references:ID"`
	ToUser   *User `gorm:"foreignKey:ToUserID;references:ID"`
}

// TableName specifies the table name for Contact
func (Contact) TableName() string {
	return "bkm_contacts"
}
