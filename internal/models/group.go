// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Group is a topical community that posts may optionally belong to.
// Groups are created administratively; there is no end-user management.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Posts       []Post    `gorm:"foreignKey:GroupID" json:"posts,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
