package commentservice

import (
	"database/sql"
	"time"

	"github.com/mikotobay/inkwell/internal/common"
	"github.com/mikotobay/inkwell/internal/userservice"
)

type Comment struct {
	ID        int              `json:"id"`
	PostID    int              `json:"post_id"`
	User      userservice.User `json:"user"`
	UserID    int              `json:"user_id"`
	ParentID  *int             `json:"parent_id,omitempty"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// ThreadComment is a top-level comment with its direct replies resolved. The
// thread is materialized exactly two levels deep by grouping children on their
// parent key, even though the schema allows arbitrary nesting.
type ThreadComment struct {
	Comment
	Replies []Comment `json:"replies"`
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	m *CommentModel
	e common.EventEmitter
}
