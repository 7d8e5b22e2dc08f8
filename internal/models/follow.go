// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Follow is a directed edge from a follower to a followed author.
// The (follower_id, author_id) pair is unique and follower != author;
// the database constraints are the concurrency-correctness mechanism
// for simultaneous follow/unfollow on the same pair.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	AuthorID   uint      `gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_no_self_follow,follower_id <> author_id" json:"author_id"`
	Follower   User      `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
