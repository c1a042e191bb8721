package models

import "time"

// Store represents a rateable store. Exactly one owner per store; the reverse
// (at most one store per owner) is enforced by the stores service.
type Store struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null"`
	Email       *string   `gorm:"column:email"`
	Description *string   `gorm:"column:description"`
	Address     *string   `gorm:"column:address"`
	OwnerID     int64     `gorm:"column:owner_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
