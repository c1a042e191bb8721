package models

import (
	"time"

	"github.com/ratehub/ratehub-backend/pkg/enums"
)

// User represents the canonical identity entity. The bootstrap admin is never
// stored here; it exists only as token claims.
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	Name         string     `gorm:"column:name;not null"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Address      *string    `gorm:"column:address"`
	Role         enums.Role `gorm:"column:role;not null;default:'normal_user'"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
