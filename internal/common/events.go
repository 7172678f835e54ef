package common

import (
	"context"
	"database/sql"
)

// Execer is the subset of *sql.DB and *sql.Tx that event consumers write through.
// Passing the caller's transaction means a notification commits or rolls back
// together with the mutation that produced the event.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Event is a discrete domain event produced by a state-changing operation.
type Event interface {
	eventName() string
}

type EventEmitter interface {
	Emit(ctx context.Context, db Execer, event Event) error
}

// FollowCreated is produced when a new follow edge is inserted. Re-creating an
// existing edge does not produce an event.
type FollowCreated struct {
	FollowerID int
	FollowedID int
}

// CommentCreated is produced for every new comment. ParentID and ParentAuthorID
// are set only for replies, so the consumer never has to read the thread back.
type CommentCreated struct {
	CommentID      int
	PostID         int
	PostAuthorID   int
	AuthorID       int
	ParentID       *int
	ParentAuthorID *int
}

// PostLiked is produced when a user is added to a post's like set. Retracting a
// like, toggling a dislike, or reacting to a comment produces no event.
type PostLiked struct {
	PostID       int
	PostAuthorID int
	ActorID      int
}

func (FollowCreated) eventName() string  { return "follow.created" }
func (CommentCreated) eventName() string { return "comment.created" }
func (PostLiked) eventName() string      { return "post.liked" }
