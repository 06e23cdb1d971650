package models

import "time"

// Student represents a learner known to the service. AnonymousID is the
// identifier shared with the scoring backend so essays are never tied to
// personal data outside this service.
type Student struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	AnonymousID string    `gorm:"size:64;uniqueIndex" json:"anonymous_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
