package commentservice

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

func setupTestEnvironment(t *testing.T) (*CommentService, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	emitter := notificationservice.NewEmitter(notificationservice.DefaultPolicy())

	return NewCommentService(db, emitter), db
}

func TestCreateComment(t *testing.T) {
	s, db := setupTestEnvironment(t)

	authorID := setupTestUser(t, db, "author")
	commenterID := setupTestUser(t, db, "commenter")
	postID := setupTestPost(t, db, authorID)

	otherPostID := setupTestPost(t, db, authorID)
	var otherParentID int
	err := db.QueryRow("INSERT INTO comments (post_id, user_id, content) VALUES ($1, $2, $3) RETURNING id", otherPostID, authorID, "elsewhere").Scan(&otherParentID)
	assert.NoError(t, err)

	t.Run("Top Level Comment", func(t *testing.T) {
		comment, err := s.CreateComment(context.Background(), &CreateCommentRequest{
			PostID:  postID,
			UserID:  commenterID,
			Content: "Nice post!",
		})
		assert.NoError(t, err)
		assert.NotZero(t, comment.ID)
		assert.Nil(t, comment.ParentID)

		// Post author is notified.
		var notificationType string
		err = db.QueryRow("SELECT notification_type FROM notifications WHERE recipient_id = $1", authorID).Scan(&notificationType)
		assert.NoError(t, err)
		assert.Equal(t, "comment", notificationType)
	})

	t.Run("Reply", func(t *testing.T) {
		parent, err := s.CreateComment(context.Background(), &CreateCommentRequest{
			PostID:  postID,
			UserID:  commenterID,
			Content: "A question.",
		})
		assert.NoError(t, err)

		reply, err := s.CreateComment(context.Background(), &CreateCommentRequest{
			PostID:   postID,
			UserID:   authorID,
			ParentID: &parent.ID,
			Content:  "An answer.",
		})
		assert.NoError(t, err)
		assert.Equal(t, parent.ID, *reply.ParentID)

		// Reply notifies the parent comment's author, not the post author.
		var notificationType string
		err = db.QueryRow("SELECT notification_type FROM notifications WHERE recipient_id = $1", commenterID).Scan(&notificationType)
		assert.NoError(t, err)
		assert.Equal(t, "reply", notificationType)
	})

	t.Run("Parent From Another Post", func(t *testing.T) {
		_, err := s.CreateComment(context.Background(), &CreateCommentRequest{
			PostID:   postID,
			UserID:   commenterID,
			ParentID: &otherParentID,
			Content:  "Misplaced reply.",
		})
		assert.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("Unknown Post", func(t *testing.T) {
		_, err := s.CreateComment(context.Background(), &CreateCommentRequest{
			PostID:  postID + 1000,
			UserID:  commenterID,
			Content: "Hello?",
		})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("Empty Content", func(t *testing.T) {
		_, err := s.CreateComment(context.Background(), &CreateCommentRequest{
			PostID: postID,
			UserID: commenterID,
		})
		assert.ErrorAs(t, err, &common.ValidationError{})
	})

	t.Run("Self Comment Does Not Notify", func(t *testing.T) {
		var before int
		err := db.QueryRow("SELECT count(*) FROM notifications").Scan(&before)
		assert.NoError(t, err)

		_, err = s.CreateComment(context.Background(), &CreateCommentRequest{
			PostID:  postID,
			UserID:  authorID,
			Content: "Author's own note.",
		})
		assert.NoError(t, err)

		var after int
		err = db.QueryRow("SELECT count(*) FROM notifications").Scan(&after)
		assert.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestDeleteComment(t *testing.T) {
	s, db := setupTestEnvironment(t)

	authorID := setupTestUser(t, db, "author")
	commenterID := setupTestUser(t, db, "commenter")
	postID := setupTestPost(t, db, authorID)

	comment, err := s.CreateComment(context.Background(), &CreateCommentRequest{
		PostID:  postID,
		UserID:  commenterID,
		Content: "To be removed.",
	})
	assert.NoError(t, err)

	reply, err := s.CreateComment(context.Background(), &CreateCommentRequest{
		PostID:   postID,
		UserID:   authorID,
		ParentID: &comment.ID,
		Content:  "A reply.",
	})
	assert.NoError(t, err)

	t.Run("Not The Author", func(t *testing.T) {
		err := s.DeleteComment(context.Background(), comment.ID, authorID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("Cascades To Replies", func(t *testing.T) {
		err := s.DeleteComment(context.Background(), comment.ID, commenterID)
		assert.NoError(t, err)

		var count int
		err = db.QueryRow("SELECT count(*) FROM comments WHERE id = $1", reply.ID).Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestThread(t *testing.T) {
	s, db := setupTestEnvironment(t)

	authorID := setupTestUser(t, db, "author")
	commenterID := setupTestUser(t, db, "commenter")
	postID := setupTestPost(t, db, authorID)

	first, err := s.CreateComment(context.Background(), &CreateCommentRequest{
		PostID:  postID,
		UserID:  commenterID,
		Content: "First!",
	})
	assert.NoError(t, err)

	second, err := s.CreateComment(context.Background(), &CreateCommentRequest{
		PostID:  postID,
		UserID:  authorID,
		Content: "Second.",
	})
	assert.NoError(t, err)

	_, err = s.CreateComment(context.Background(), &CreateCommentRequest{
		PostID:   postID,
		UserID:   authorID,
		ParentID: &first.ID,
		Content:  "Reply to first.",
	})
	assert.NoError(t, err)

	_, err = s.CreateComment(context.Background(), &CreateCommentRequest{
		PostID:   postID,
		UserID:   commenterID,
		ParentID: &first.ID,
		Content:  "Another reply to first.",
	})
	assert.NoError(t, err)

	thread, err := s.Thread(context.Background(), postID)
	assert.NoError(t, err)

	assert.Len(t, thread, 2)
	assert.Equal(t, first.ID, thread[0].ID)
	assert.Equal(t, second.ID, thread[1].ID)

	assert.Len(t, thread[0].Replies, 2)
	assert.Equal(t, "Reply to first.", thread[0].Replies[0].Content)
	assert.Empty(t, thread[1].Replies)

	t.Run("Unknown Post", func(t *testing.T) {
		_, err := s.Thread(context.Background(), postID+1000)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := s.Count(context.Background(), postID)
		assert.NoError(t, err)
		assert.Equal(t, 4, count)
	})
}
