package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostVisibleTo(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	published := &Category{IsPublished: true}
	hidden := &Category{IsPublished: false}

	tests := []struct {
		name     string
		post     Post
		viewerID uint
		want     bool
	}{
		{
			name:     "published post is public",
			post:     Post{AuthorID: 1, IsPublished: true, PubDate: now.Add(-time.Hour), Category: published},
			viewerID: 0,
			want:     true,
		},
		{
			name:     "draft hidden from others",
			post:     Post{AuthorID: 1, IsPublished: false, PubDate: now.Add(-time.Hour), Category: published},
			viewerID: 2,
			want:     false,
		},
		{
			name:     "draft visible to author",
			post:     Post{AuthorID: 1, IsPublished: false, PubDate: now.Add(-time.Hour), Category: published},
			viewerID: 1,
			want:     true,
		},
		{
			name:     "future-dated hidden from others",
			post:     Post{AuthorID: 1, IsPublished: true, PubDate: now.Add(time.Hour), Category: published},
			viewerID: 2,
			want:     false,
		},
		{
			name:     "future-dated visible to author",
			post:     Post{AuthorID: 1, IsPublished: true, PubDate: now.Add(time.Hour), Category: published},
			viewerID: 1,
			want:     true,
		},
		{
			name:     "hidden category hides the post",
			post:     Post{AuthorID: 1, IsPublished: true, PubDate: now.Add(-time.Hour), Category: hidden},
			viewerID: 2,
			want:     false,
		},
		{
			name:     "uncategorized post is never public",
			post:     Post{AuthorID: 1, IsPublished: true, PubDate: now.Add(-time.Hour)},
			viewerID: 0,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.post.VisibleTo(tt.viewerID, now))
		})
	}
}
