package commentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidParent  = errors.New("parent comment does not belong to the post")
)

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

// getPostAuthor returns the author of the post, or ErrRecordNotFound.
func getPostAuthor(tx *sql.Tx, ctx context.Context, postID int) (int, error) {
	var authorID int
	err := tx.QueryRowContext(ctx, "SELECT user_id FROM posts WHERE id = $1", postID).Scan(&authorID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, ErrRecordNotFound
		default:
			return 0, err
		}
	}

	return authorID, nil
}

// getParent returns the parent comment's author and post, or ErrRecordNotFound.
func getParent(tx *sql.Tx, ctx context.Context, parentID int) (authorID, postID int, err error) {
	err = tx.QueryRowContext(ctx, "SELECT user_id, post_id FROM comments WHERE id = $1", parentID).Scan(&authorID, &postID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, 0, ErrRecordNotFound
		default:
			return 0, 0, err
		}
	}

	return authorID, postID, nil
}

func (m *CommentModel) insert(tx *sql.Tx, ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return tx.QueryRowContext(ctx, query, c.PostID, c.UserID, c.ParentID, c.Content).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (m *CommentModel) deleteComment(ctx context.Context, commentID, userID int) error {
	query := `
		DELETE FROM comments
		WHERE id = $1 AND user_id = $2`

	res, err := m.db.ExecContext(ctx, query, commentID, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// getThread loads every comment of the post in one query, creation time
// ascending, and partitions top-level comments from replies by grouping on the
// parent key. Replies whose parent is itself a reply still attach to that
// parent key; only direct children are materialized.
func (m *CommentModel) getThread(ctx context.Context, postID int) ([]ThreadComment, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)", postID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT c.id, c.post_id, c.user_id, c.parent_id, c.content, c.created_at, c.updated_at, u.username,
			(SELECT count(*) FROM comment_likes WHERE comment_id = c.id),
			(SELECT count(*) FROM comment_dislikes WHERE comment_id = c.id)
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topLevel []Comment
	replies := make(map[int][]Comment)

	for rows.Next() {
		var c Comment
		var parentID sql.NullInt64

		err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &parentID, &c.Content, &c.CreatedAt, &c.UpdatedAt, &c.User.Username, &c.Likes, &c.Dislikes)
		if err != nil {
			return nil, err
		}
		c.User.ID = c.UserID

		if parentID.Valid {
			pid := int(parentID.Int64)
			c.ParentID = &pid
			replies[pid] = append(replies[pid], c)
		} else {
			topLevel = append(topLevel, c)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	thread := make([]ThreadComment, 0, len(topLevel))
	for _, c := range topLevel {
		thread = append(thread, ThreadComment{Comment: c, Replies: replies[c.ID]})
	}

	return thread, nil
}

func (m *CommentModel) countByPostID(ctx context.Context, postID int) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT count(*) FROM comments WHERE post_id = $1", postID).Scan(&count)
	return count, err
}
