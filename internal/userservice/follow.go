package userservice

import (
	"context"
	"database/sql"
	"errors"
)

// insertFollow creates the follow edge with get-or-create semantics. The
// returned bool reports whether a new row was inserted; re-creating an
// existing edge returns the existing row and false.
func (m *DBModel) insertFollow(tx *sql.Tx, ctx context.Context, followerID, followedID int) (*Follow, bool, error) {
	query := `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
		RETURNING id, follower_id, followed_id, created_at`

	var f Follow
	err := tx.QueryRowContext(ctx, query, followerID, followedID).Scan(&f.ID, &f.FollowerID, &f.FollowedID, &f.CreatedAt)
	if err == nil {
		return &f, true, nil
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// The edge already exists.
	case ForeignKeyViolation(err, "follows_followed_id_fkey"):
		return nil, false, ErrNotFound
	case ForeignKeyViolation(err, "follows_follower_id_fkey"):
		return nil, false, ErrNotFound
	default:
		return nil, false, err
	}

	query = `
		SELECT id, follower_id, followed_id, created_at
		FROM follows
		WHERE follower_id = $1 AND followed_id = $2`

	err = tx.QueryRowContext(ctx, query, followerID, followedID).Scan(&f.ID, &f.FollowerID, &f.FollowedID, &f.CreatedAt)
	if err != nil {
		return nil, false, err
	}

	return &f, false, nil
}

// deleteFollow removes the follow edge. Deleting an absent edge is a no-op.
func (m *DBModel) deleteFollow(ctx context.Context, followerID, followedID int) error {
	query := `
		DELETE FROM follows
		WHERE follower_id = $1 AND followed_id = $2`

	_, err := m.db.ExecContext(ctx, query, followerID, followedID)
	return err
}

func (m *DBModel) isFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE follower_id = $1 AND followed_id = $2)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&exists)
	return exists, err
}

func (m *DBModel) getFollowers(ctx context.Context, userID int) ([]User, error) {
	query := `
		SELECT u.id, u.username
		FROM follows f
		JOIN users u ON f.follower_id = u.id
		WHERE f.followed_id = $1
		ORDER BY f.created_at DESC`

	return m.scanUserList(ctx, query, userID)
}

func (m *DBModel) getFollowing(ctx context.Context, userID int) ([]User, error) {
	query := `
		SELECT u.id, u.username
		FROM follows f
		JOIN users u ON f.followed_id = u.id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC`

	return m.scanUserList(ctx, query, userID)
}

func (m *DBModel) scanUserList(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.Username)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
