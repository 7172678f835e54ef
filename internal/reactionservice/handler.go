package reactionservice

import (
	"context"
	"database/sql"

	"github.com/mikotobay/inkwell/internal/common"
)

func NewReactionService(db *sql.DB, e common.EventEmitter) *ReactionService {
	return &ReactionService{m: newReactionModel(db), e: e}
}

// Toggle applies the reaction state machine for the (actor, target) pair: an
// active reaction of the requested kind is retracted, an active opposite
// reaction is switched, and no reaction becomes the requested kind. The whole
// transition runs in one transaction so the pair can never be in both sets.
//
// Adding a like to a post emits a notification in the same transaction.
// Retractions, dislikes, and comment reactions are silent; the notification
// policy decides, not the caller.
func (s *ReactionService) Toggle(ctx context.Context, actorID int, target TargetKind, targetID int, kind Kind) (*ToggleResult, error) {
	v := common.NewValidator()
	validateInt(v, actorID, "actor_id")
	validateInt(v, targetID, "target_id")
	v.Check(common.PermittedValue(target, TargetPost, TargetComment), "target", "must be either post or comment")
	v.Check(common.PermittedValue(kind, KindLike, KindDislike), "kind", "must be either like or dislike")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	t := targetTables[target]

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	authorID, err := s.m.getAuthor(tx, ctx, t, targetID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	added, err := s.m.toggle(tx, ctx, t, kind, targetID, actorID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	likes, dislikes, err := s.m.counts(tx, ctx, t, targetID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if added && target == TargetPost && kind == KindLike {
		err = s.e.Emit(ctx, tx, common.PostLiked{PostID: targetID, PostAuthorID: authorID, ActorID: actorID})
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result := &ToggleResult{LikeCount: likes, DislikeCount: dislikes}
	if added {
		switch kind {
		case KindLike:
			result.IsLiked = true
		case KindDislike:
			result.IsDisliked = true
		}
	}
	return result, nil
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
