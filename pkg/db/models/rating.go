package models

import "time"

// Rating is a single user's rating of a single store. The composite unique
// index backs the one-rating-per-user-per-store invariant under concurrent
// writers; resubmission updates the row in place.
type Rating struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	StoreID   int64     `gorm:"column:store_id;not null;uniqueIndex:idx_ratings_user_store,priority:2"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_ratings_user_store,priority:1"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
