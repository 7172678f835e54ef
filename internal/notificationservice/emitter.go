package notificationservice

import (
	"context"
	"fmt"

	"github.com/mikotobay/inkwell/internal/common"
)

// Emitter turns domain events into notification rows. It writes through the
// caller's transaction, so a notification is never created when the primary
// mutation rolls back, and vice versa.
type Emitter struct {
	policy Policy
}

func NewEmitter(policy Policy) *Emitter {
	return &Emitter{policy: policy}
}

// Emit creates at most one notification for the event. A notification whose
// recipient would equal its sender is suppressed.
func (e *Emitter) Emit(ctx context.Context, db common.Execer, event common.Event) error {
	var (
		typ       NotificationType
		recipient int
		sender    int
		postID    *int
		commentID *int
	)

	switch ev := event.(type) {
	case common.FollowCreated:
		if !e.policy.Follow {
			return nil
		}
		typ = TypeFollow
		recipient = ev.FollowedID
		sender = ev.FollowerID

	case common.CommentCreated:
		sender = ev.AuthorID
		postID = &ev.PostID
		commentID = &ev.CommentID

		if ev.ParentID != nil {
			// A reply notifies the parent comment's author, never the
			// post's author.
			if !e.policy.Reply {
				return nil
			}
			typ = TypeReply
			recipient = *ev.ParentAuthorID
		} else {
			if !e.policy.Comment {
				return nil
			}
			typ = TypeComment
			recipient = ev.PostAuthorID
		}

	case common.PostLiked:
		if !e.policy.PostLike {
			return nil
		}
		typ = TypeLikePost
		recipient = ev.PostAuthorID
		sender = ev.ActorID
		postID = &ev.PostID

	default:
		return fmt.Errorf("unknown event type %T", event)
	}

	if recipient == sender {
		return nil
	}

	query := `
		INSERT INTO notifications (recipient_id, sender_id, notification_type, post_id, comment_id)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := db.ExecContext(ctx, query, recipient, sender, typ, postID, commentID)
	return err
}
