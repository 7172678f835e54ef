package reactionservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

func newReactionModel(db *sql.DB) *ReactionModel {
	return &ReactionModel{db: db}
}

// tables describes where a target kind keeps its reaction sets. The table and
// column names come from this fixed map, never from input.
type tables struct {
	owner    string
	fk       string
	likes    string
	dislikes string
}

var targetTables = map[TargetKind]tables{
	TargetPost:    {owner: "posts", fk: "post_id", likes: "post_likes", dislikes: "post_dislikes"},
	TargetComment: {owner: "comments", fk: "comment_id", likes: "comment_likes", dislikes: "comment_dislikes"},
}

func (t tables) set(kind Kind) string {
	if kind == KindLike {
		return t.likes
	}
	return t.dislikes
}

func (t tables) opposite(kind Kind) string {
	if kind == KindLike {
		return t.dislikes
	}
	return t.likes
}

// getAuthor returns the author of the target row, or ErrRecordNotFound.
func (m *ReactionModel) getAuthor(tx *sql.Tx, ctx context.Context, t tables, targetID int) (int, error) {
	query := fmt.Sprintf("SELECT user_id FROM %s WHERE id = $1", t.owner)

	var authorID int
	err := tx.QueryRowContext(ctx, query, targetID).Scan(&authorID)
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

// toggle removes the actor from the opposite set and flips membership in the
// requested set. The returned bool reports whether the membership was added.
// The caller holds the transaction, so the two writes land atomically.
func (m *ReactionModel) toggle(tx *sql.Tx, ctx context.Context, t tables, kind Kind, targetID, actorID int) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND user_id = $2", t.opposite(kind), t.fk)
	_, err := tx.ExecContext(ctx, query, targetID, actorID)
	if err != nil {
		return false, err
	}

	query = fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND user_id = $2", t.set(kind), t.fk)
	res, err := tx.ExecContext(ctx, query, targetID, actorID)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if rows > 0 {
		// The actor was already in the set: the toggle retracts.
		return false, nil
	}

	query = fmt.Sprintf("INSERT INTO %s (%s, user_id) VALUES ($1, $2)", t.set(kind), t.fk)
	_, err = tx.ExecContext(ctx, query, targetID, actorID)
	if err != nil {
		return false, err
	}

	return true, nil
}

// counts returns the live cardinality of both reaction sets.
func (m *ReactionModel) counts(tx *sql.Tx, ctx context.Context, t tables, targetID int) (likes, dislikes int, err error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT count(DISTINCT user_id) FROM %s WHERE %s = $1),
			(SELECT count(DISTINCT user_id) FROM %s WHERE %s = $1)`,
		t.likes, t.fk, t.dislikes, t.fk)

	err = tx.QueryRowContext(ctx, query, targetID).Scan(&likes, &dislikes)
	return likes, dislikes, err
}
