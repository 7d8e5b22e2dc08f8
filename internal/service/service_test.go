package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func newTestPostService(db *gorm.DB, pageSize int) *PostService {
	return NewPostService(
		repository.NewPostRepository(db),
		repository.NewGroupRepository(db),
		repository.NewUserRepository(db),
		repository.NewFollowRepository(db),
		pageSize,
	)
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: slug, Slug: slug, Description: "test group"}
	require.NoError(t, db.Create(group).Error)
	return group
}

// createTestPosts inserts n posts for the author with strictly increasing
// created_at, so the newest post is the last one created.
func createTestPosts(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, n int) []*models.Post {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := &models.Post{
			Text:      fmt.Sprintf("post %d by %s", i, author.Username),
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if group != nil {
			post.GroupID = &group.ID
		}
		require.NoError(t, db.Create(post).Error)
		posts = append(posts, post)
	}
	return posts
}

func TestPostService_ListAll(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	createTestPosts(t, db, author, nil, 13)

	first, err := svc.ListAll(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 13, first.Count)
	assert.Equal(t, 2, first.NumPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)

	// newest first
	assert.Equal(t, "post 12 by leo", first.Items[0].Text)

	second, err := svc.ListAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second.Items, 3)
	assert.True(t, second.HasPrevious)
	assert.False(t, second.HasNext)

	// no overlap between consecutive pages
	seen := map[uint]bool{}
	for _, p := range first.Items {
		seen[p.ID] = true
	}
	for _, p := range second.Items {
		assert.False(t, seen[p.ID], "post %d appeared on both pages", p.ID)
	}
}

func TestPostService_ListAll_PageClamping(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	createTestPosts(t, db, author, nil, 13)

	page, err := svc.ListAll(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number, "overshoot clamps to the last page")
	assert.Len(t, page.Items, 3)
}

func TestPostService_ListAll_Empty(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)

	page, err := svc.ListAll(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
}

func TestPostService_ListByGroup(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	cats := createTestGroup(t, db, "cats")
	dogs := createTestGroup(t, db, "dogs")
	createTestPosts(t, db, author, cats, 3)
	createTestPosts(t, db, author, dogs, 2)
	createTestPosts(t, db, author, nil, 4)

	listing, err := svc.ListByGroup(ctx, "cats", 1)
	require.NoError(t, err)
	assert.Equal(t, "cats", listing.Group.Slug)
	assert.Equal(t, 3, listing.Page.Count)
	for _, p := range listing.Page.Items {
		require.NotNil(t, p.GroupID)
		assert.Equal(t, cats.ID, *p.GroupID)
	}
}

func TestPostService_ListByGroup_UnknownSlug(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)

	_, err := svc.ListByGroup(context.Background(), "nope", 1)
	require.Error(t, err)
	appErr := &models.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostService_ListByAuthor(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	leo := createTestUser(t, db, "leo")
	anna := createTestUser(t, db, "anna")
	createTestPosts(t, db, leo, nil, 3)
	createTestPosts(t, db, anna, nil, 5)

	followRepo := repository.NewFollowRepository(db)
	require.NoError(t, followRepo.Create(ctx, anna.ID, leo.ID))
	require.NoError(t, followRepo.Create(ctx, leo.ID, anna.ID))

	listing, err := svc.ListByAuthor(ctx, "leo", 1, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", listing.Author.Username)
	assert.Equal(t, int64(3), listing.PostsCount)
	assert.Equal(t, int64(1), listing.FollowersCount)
	assert.Equal(t, int64(1), listing.FollowingCount)
	assert.True(t, listing.Following)
	assert.Len(t, listing.Page.Items, 3)

	// anonymous readers never see a Following flag
	anon, err := svc.ListByAuthor(ctx, "leo", 1, 0)
	require.NoError(t, err)
	assert.False(t, anon.Following)
}

func TestPostService_ListFeed(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()
	followRepo := repository.NewFollowRepository(db)

	reader := createTestUser(t, db, "reader")
	followed := createTestUser(t, db, "followed")
	stranger := createTestUser(t, db, "stranger")
	createTestPosts(t, db, followed, nil, 3)
	createTestPosts(t, db, stranger, nil, 2)

	require.NoError(t, followRepo.Create(ctx, reader.ID, followed.ID))

	page, err := svc.ListFeed(ctx, reader.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	for _, p := range page.Items {
		assert.Equal(t, followed.ID, p.AuthorID)
	}

	// after unfollow the feed is empty
	require.NoError(t, followRepo.Delete(ctx, reader.ID, followed.ID))
	page, err = svc.ListFeed(ctx, reader.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Count)
	assert.Empty(t, page.Items)
}

func TestPostService_ListFeed_Anonymous(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)

	_, err := svc.ListFeed(context.Background(), 0, 1)
	require.Error(t, err)
	appErr := &models.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
}

func TestPostService_CreatePost(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	group := createTestGroup(t, db, "cats")

	post, err := svc.CreatePost(ctx, CreatePostInput{
		AuthorID: author.ID,
		Text:     "hello",
		GroupID:  &group.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Text)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
	assert.Equal(t, author.ID, post.Author.ID)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")

	_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "   "})
	appErr := &models.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	unknown := uint(999)
	_, err = svc.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Text: "x", GroupID: &unknown})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestPostService_UpdatePost_NonAuthorLeavesPostUntouched(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	intruder := createTestUser(t, db, "anna")
	post := createTestPosts(t, db, author, nil, 1)[0]

	_, err := svc.UpdatePost(ctx, UpdatePostInput{
		UserID: intruder.ID,
		PostID: post.ID,
		Text:   "hijacked",
	})
	require.Error(t, err)
	appErr := &models.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, post.Text, stored.Text)
}

func TestPostService_UpdatePost_Author(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	post := createTestPosts(t, db, author, nil, 1)[0]

	updated, err := svc.UpdatePost(ctx, UpdatePostInput{
		UserID: author.ID,
		PostID: post.ID,
		Text:   "edited",
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	assert.Nil(t, updated.GroupID)
}

func TestPostService_DeletePost(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestPostService(db, 10)
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	intruder := createTestUser(t, db, "anna")
	post := createTestPosts(t, db, author, nil, 1)[0]

	err := svc.DeletePost(ctx, intruder.ID, post.ID)
	appErr := &models.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	require.NoError(t, svc.DeletePost(ctx, author.ID, post.ID))
	_, err = svc.GetPost(ctx, post.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestFollowService_Idempotence(t *testing.T) {
	db := setupServiceTestDB(t)
	followRepo := repository.NewFollowRepository(db)
	svc := NewFollowService(followRepo, repository.NewUserRepository(db))
	ctx := context.Background()

	follower := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "writer")

	for i := 0; i < 3; i++ {
		got, err := svc.Follow(ctx, follower.ID, "writer")
		require.NoError(t, err)
		assert.Equal(t, author.ID, got.ID)
	}

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "repeated follows leave exactly one edge")

	for i := 0; i < 2; i++ {
		_, err := svc.Unfollow(ctx, follower.ID, "writer")
		require.NoError(t, err)
	}
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFollowService_SelfFollowRejected(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewFollowService(repository.NewFollowRepository(db), repository.NewUserRepository(db))
	ctx := context.Background()

	user := createTestUser(t, db, "narcissus")

	author, err := svc.Follow(ctx, user.ID, "narcissus")
	require.Error(t, err)
	appErr := &models.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeSelfFollow, appErr.Code)
	// the target author still comes back so the handler can redirect
	require.NotNil(t, author)
	assert.Equal(t, user.ID, author.ID)

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFollowService_UnknownAuthor(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewFollowService(repository.NewFollowRepository(db), repository.NewUserRepository(db))

	follower := createTestUser(t, db, "reader")

	_, err := svc.Follow(context.Background(), follower.ID, "ghost")
	appErr := &models.AppError{}
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestCommentService_AddComment(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewCommentService(repository.NewCommentRepository(db), repository.NewPostRepository(db))
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	post := createTestPosts(t, db, author, nil, 1)[0]

	comment, err := svc.AddComment(ctx, AddCommentInput{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     "first!",
	})
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)

	comments, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Text)
}

func TestCommentService_AddComment_Errors(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewCommentService(repository.NewCommentRepository(db), repository.NewPostRepository(db))
	ctx := context.Background()

	author := createTestUser(t, db, "leo")
	post := createTestPosts(t, db, author, nil, 1)[0]

	appErr := &models.AppError{}

	_, err := svc.AddComment(ctx, AddCommentInput{PostID: post.ID, AuthorID: author.ID, Text: " "})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	_, err = svc.AddComment(ctx, AddCommentInput{PostID: 999, AuthorID: author.ID, Text: "hi"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
