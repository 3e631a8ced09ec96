package models

import (
	"time"
)

// AuthToken is a bearer token issued at registration or login and revoked
// at logout.
type AuthToken struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
