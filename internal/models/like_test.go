package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// Two likes on the same post carry a NULL comment_id, and Postgres treats
// NULLs in a unique index as distinct. Duplicate protection therefore needs
// one partial unique index per target, neither spanning a nullable column.
func TestLikeUniqueIndexesArePartialPerTarget(t *testing.T) {
	s, err := schema.Parse(&Like{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	indexes := make(map[string]*schema.Index)
	for _, idx := range s.ParseIndexes() {
		indexes[idx.Name] = idx
	}

	post, ok := indexes["idx_likes_user_post"]
	require.True(t, ok, "post like index missing")
	assert.Equal(t, "UNIQUE", post.Class)
	assert.Equal(t, "target = 'post'", post.Where)
	require.Len(t, post.Fields, 2)
	assert.Equal(t, "UserID", post.Fields[0].Name)
	assert.Equal(t, "PostID", post.Fields[1].Name)

	comment, ok := indexes["idx_likes_user_comment"]
	require.True(t, ok, "comment like index missing")
	assert.Equal(t, "UNIQUE", comment.Class)
	assert.Equal(t, "target = 'comment'", comment.Where)
	require.Len(t, comment.Fields, 2)
	assert.Equal(t, "UserID", comment.Fields[0].Name)
	assert.Equal(t, "CommentID", comment.Fields[1].Name)
}
