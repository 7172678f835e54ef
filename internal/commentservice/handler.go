package commentservice

import (
	"context"
	"database/sql"

	"github.com/mikotobay/inkwell/internal/common"
)

func NewCommentService(db *sql.DB, e common.EventEmitter) *CommentService {
	return &CommentService{m: newCommentModel(db), e: e}
}

type CreateCommentRequest struct {
	PostID   int    `json:"post_id"`
	UserID   int    `json:"user_id"`
	ParentID *int   `json:"parent_id"`
	Content  string `json:"content"`
}

// CreateComment inserts the comment and emits a comment or reply notification
// in the same transaction. A reply's parent must belong to the same post.
func (s *CommentService) CreateComment(ctx context.Context, req *CreateCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	validateContent(v, req.Content)
	validateInt(v, req.PostID, "post_id")
	validateInt(v, req.UserID, "user_id")
	if req.ParentID != nil {
		validateInt(v, *req.ParentID, "parent_id")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	postAuthorID, err := getPostAuthor(tx, ctx, req.PostID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	event := common.CommentCreated{
		PostID:       req.PostID,
		PostAuthorID: postAuthorID,
		AuthorID:     req.UserID,
	}

	if req.ParentID != nil {
		parentAuthorID, parentPostID, err := getParent(tx, ctx, *req.ParentID)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		if parentPostID != req.PostID {
			_ = tx.Rollback()
			return nil, ErrInvalidParent
		}

		event.ParentID = req.ParentID
		event.ParentAuthorID = &parentAuthorID
	}

	comment := &Comment{
		PostID:   req.PostID,
		UserID:   req.UserID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	comment.User.ID = req.UserID

	err = s.m.insert(tx, ctx, comment)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	event.CommentID = comment.ID

	err = s.e.Emit(ctx, tx, event)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return comment, nil
}

// DeleteComment deletes a comment. Only the author can delete it. Replies are
// removed by the cascade.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID int) error {
	v := common.NewValidator()
	validateInt(v, commentID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deleteComment(ctx, commentID, userID)
}

// Thread returns the post's comments as top-level comments with their direct
// replies, both ordered by creation time ascending.
func (s *CommentService) Thread(ctx context.Context, postID int) ([]ThreadComment, error) {
	v := common.NewValidator()
	validateInt(v, postID, "post_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getThread(ctx, postID)
}

// Count returns the live comment count of a post.
func (s *CommentService) Count(ctx context.Context, postID int) (int, error) {
	v := common.NewValidator()
	validateInt(v, postID, "post_id")
	if !v.Valid() {
		return 0, v.ValidationError()
	}

	return s.m.countByPostID(ctx, postID)
}
