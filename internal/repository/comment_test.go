package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestListByPostOrdersOldestFirst(t *testing.T) {
	resetTables(t)
	commentRepo := NewCommentRepository(testDB)
	ctx := context.Background()
	now := time.Now().UTC()

	author := createTestUser(t, "commenter")
	category := createTestCategory(t, "chat", true)
	post := createTestPost(t, author, category, now.Add(-time.Hour), true)

	for i, text := range []string{"first", "second", "third"} {
		comment := &models.Comment{
			Text:     text,
			AuthorID: author.ID,
			PostID:   post.ID,
		}
		comment.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, testDB.Create(comment).Error)
	}

	comments, err := commentRepo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "third", comments[2].Text)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "commenter", comments[0].Author.Username)
}

func TestCategoryGetPublishedBySlug(t *testing.T) {
	resetTables(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	createTestCategory(t, "visible", true)
	createTestCategory(t, "hidden", false)

	got, err := repo.GetPublishedBySlug(ctx, "visible")
	require.NoError(t, err)
	assert.Equal(t, "visible", got.Slug)

	_, err = repo.GetPublishedBySlug(ctx, "hidden")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repo.GetPublishedBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
