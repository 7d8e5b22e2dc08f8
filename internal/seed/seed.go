package seed

import (
	"fmt"
	"log/slog"
	"math/rand"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumGroups   int
	NumPosts    int
	ShouldClean bool
}

// DefaultOptions returns a small but representative dataset.
func DefaultOptions() Options {
	return Options{NumUsers: 12, NumGroups: 5, NumPosts: 80}
}

// Seed populates the database with demo users, groups, posts, comments and
// a follow mesh between the users.
func Seed(db *gorm.DB, opts Options) error {
	slog.Info("starting database seeding",
		"users", opts.NumUsers, "groups", opts.NumGroups, "posts", opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		users = append(users, user)
	}
	slog.Info("seeded users", "count", len(users))

	groups := make([]*models.Group, 0, opts.NumGroups)
	for i := 0; i < opts.NumGroups; i++ {
		group, err := f.CreateGroup()
		if err != nil {
			return fmt.Errorf("seed groups: %w", err)
		}
		groups = append(groups, group)
	}
	slog.Info("seeded groups", "count", len(groups))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rnd.Intn(len(users))]
		var group *models.Group
		// roughly a third of the posts stay ungrouped
		if len(groups) > 0 && f.rnd.Intn(3) != 0 {
			group = groups[f.rnd.Intn(len(groups))]
		}
		post, err := f.CreatePost(author, group)
		if err != nil {
			return fmt.Errorf("seed posts: %w", err)
		}
		posts = append(posts, post)
	}
	slog.Info("seeded posts", "count", len(posts))

	comments := 0
	for _, post := range posts {
		for n := f.rnd.Intn(4); n > 0; n-- {
			commenter := users[f.rnd.Intn(len(users))]
			if _, err := f.CreateComment(post, commenter); err != nil {
				return fmt.Errorf("seed comments: %w", err)
			}
			comments++
		}
	}
	slog.Info("seeded comments", "count", comments)

	follows, err := seedFollowMesh(db, f.rnd, users)
	if err != nil {
		return fmt.Errorf("seed follows: %w", err)
	}
	slog.Info("seeded follow mesh", "count", follows)

	return nil
}

// seedFollowMesh gives every user a handful of subscriptions to other
// authors, skipping self-follows and tolerating duplicates.
func seedFollowMesh(db *gorm.DB, rnd *rand.Rand, users []*models.User) (int, error) {
	created := 0
	for _, follower := range users {
		for n := rnd.Intn(4) + 1; n > 0; n-- {
			author := users[rnd.Intn(len(users))]
			if author.ID == follower.ID {
				continue
			}
			follow := &models.Follow{FollowerID: follower.ID, AuthorID: author.ID}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
			if res.Error != nil {
				return created, res.Error
			}
			created += int(res.RowsAffected)
		}
	}
	return created, nil
}

func clearData(db *gorm.DB) error {
	// children first to satisfy foreign keys
	for _, model := range []any{
		&models.Comment{}, &models.Follow{}, &models.Post{},
		&models.Group{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
