package reactionservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikotobay/inkwell/internal/common"
	"github.com/mikotobay/inkwell/internal/notificationservice"
)

func setupTestUser(t *testing.T, db *sql.DB, username string) int {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	assert.NoError(t, err)

	var id int
	err = db.QueryRow("INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id", username, username+"@example.com", randomBytes).Scan(&id)
	assert.NoError(t, err)

	return id
}

func setupTestPost(t *testing.T, db *sql.DB, userID int) int {
	var id int
	err := db.QueryRow("INSERT INTO posts (title, content, status, user_id) VALUES ($1, $2, 'published', $3) RETURNING id", "Test Post", "Content.", userID).Scan(&id)
	assert.NoError(t, err)

	return id
}

func setupTestComment(t *testing.T, db *sql.DB, postID, userID int) int {
	var id int
	err := db.QueryRow("INSERT INTO comments (post_id, user_id, content) VALUES ($1, $2, $3) RETURNING id", postID, userID, "A comment.").Scan(&id)
	assert.NoError(t, err)

	return id
}

func setupTestEnvironment(t *testing.T) (*ReactionService, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	emitter := notificationservice.NewEmitter(notificationservice.DefaultPolicy())

	return NewReactionService(db, emitter), db
}

func TestTogglePostLike(t *testing.T) {
	s, db := setupTestEnvironment(t)

	authorID := setupTestUser(t, db, "author")
	readerID := setupTestUser(t, db, "reader")
	postID := setupTestPost(t, db, authorID)

	t.Run("Like", func(t *testing.T) {
		result, err := s.Toggle(context.Background(), readerID, TargetPost, postID, KindLike)
		assert.NoError(t, err)

		assert.True(t, result.IsLiked)
		assert.False(t, result.IsDisliked)
		assert.Equal(t, 1, result.LikeCount)
		assert.Equal(t, 0, result.DislikeCount)

		// A like on someone else's post is the only toggle that notifies.
		var count int
		err = db.QueryRow("SELECT count(*) FROM notifications WHERE recipient_id = $1 AND notification_type = 'like_post'", authorID).Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Like Again Retracts", func(t *testing.T) {
		result, err := s.Toggle(context.Background(), readerID, TargetPost, postID, KindLike)
		assert.NoError(t, err)

		assert.False(t, result.IsLiked)
		assert.False(t, result.IsDisliked)
		assert.Equal(t, 0, result.LikeCount)
		assert.Equal(t, 0, result.DislikeCount)

		// Retraction leaves the earlier notification in place.
		var count int
		err = db.QueryRow("SELECT count(*) FROM notifications WHERE recipient_id = $1", authorID).Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Dislike Then Like Switches", func(t *testing.T) {
		result, err := s.Toggle(context.Background(), readerID, TargetPost, postID, KindDislike)
		assert.NoError(t, err)
		assert.True(t, result.IsDisliked)
		assert.False(t, result.IsLiked)
		assert.Equal(t, 0, result.LikeCount)
		assert.Equal(t, 1, result.DislikeCount)

		result, err = s.Toggle(context.Background(), readerID, TargetPost, postID, KindLike)
		assert.NoError(t, err)
		assert.True(t, result.IsLiked)
		assert.False(t, result.IsDisliked)
		assert.Equal(t, 1, result.LikeCount)
		assert.Equal(t, 0, result.DislikeCount)

		// Never in both sets.
		var both int
		err = db.QueryRow(`
			SELECT count(*) FROM post_likes l
			JOIN post_dislikes d ON l.post_id = d.post_id AND l.user_id = d.user_id`).Scan(&both)
		assert.NoError(t, err)
		assert.Equal(t, 0, both)
	})

	t.Run("Counts Are Per User", func(t *testing.T) {
		otherID := setupTestUser(t, db, "other")

		result, err := s.Toggle(context.Background(), otherID, TargetPost, postID, KindLike)
		assert.NoError(t, err)
		assert.Equal(t, 2, result.LikeCount)
	})

	t.Run("Self Like Does Not Notify", func(t *testing.T) {
		_, err := s.Toggle(context.Background(), authorID, TargetPost, postID, KindLike)
		assert.NoError(t, err)

		var count int
		err = db.QueryRow("SELECT count(*) FROM notifications WHERE recipient_id = $1 AND sender_id = $1", authorID).Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Unknown Post", func(t *testing.T) {
		_, err := s.Toggle(context.Background(), readerID, TargetPost, postID+1000, KindLike)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("Invalid Kind", func(t *testing.T) {
		_, err := s.Toggle(context.Background(), readerID, TargetPost, postID, Kind("love"))
		assert.ErrorAs(t, err, &common.ValidationError{})
	})
}

func TestToggleCommentReactions(t *testing.T) {
	s, db := setupTestEnvironment(t)

	authorID := setupTestUser(t, db, "author")
	readerID := setupTestUser(t, db, "reader")
	postID := setupTestPost(t, db, authorID)
	commentID := setupTestComment(t, db, postID, authorID)

	t.Run("Comment Like Is Silent", func(t *testing.T) {
		result, err := s.Toggle(context.Background(), readerID, TargetComment, commentID, KindLike)
		assert.NoError(t, err)

		assert.True(t, result.IsLiked)
		assert.Equal(t, 1, result.LikeCount)

		var count int
		err = db.QueryRow("SELECT count(*) FROM notifications").Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Comment Dislike", func(t *testing.T) {
		result, err := s.Toggle(context.Background(), readerID, TargetComment, commentID, KindDislike)
		assert.NoError(t, err)

		assert.True(t, result.IsDisliked)
		assert.Equal(t, 0, result.LikeCount)
		assert.Equal(t, 1, result.DislikeCount)
	})

	t.Run("Unknown Comment", func(t *testing.T) {
		_, err := s.Toggle(context.Background(), readerID, TargetComment, commentID+1000, KindLike)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
