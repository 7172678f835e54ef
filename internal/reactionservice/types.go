package reactionservice

import (
	"database/sql"

	"github.com/mikotobay/inkwell/internal/common"
)

type TargetKind string

type Kind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"

	KindLike    Kind = "like"
	KindDislike Kind = "dislike"
)

// ToggleResult reports the actor's membership in each reaction set after a
// toggle, plus the live distinct cardinalities of both sets. At most one of
// IsLiked and IsDisliked is true.
type ToggleResult struct {
	IsLiked      bool `json:"is_liked"`
	IsDisliked   bool `json:"is_disliked"`
	LikeCount    int  `json:"like_count"`
	DislikeCount int  `json:"dislike_count"`
}

type ReactionModel struct {
	db *sql.DB
}

type ReactionService struct {
	m *ReactionModel
	e common.EventEmitter
}
