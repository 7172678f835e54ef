package notificationservice

import (
	"database/sql"
	"time"

	"github.com/mikotobay/inkwell/internal/userservice"
)

type NotificationType string

const (
	TypeFollow   NotificationType = "follow"
	TypeLikePost NotificationType = "like_post"
	TypeComment  NotificationType = "comment"
	TypeReply    NotificationType = "reply"
)

type Notification struct {
	ID          int              `json:"id"`
	Type        NotificationType `json:"type"`
	RecipientID int              `json:"recipient_id"`
	Sender      userservice.User `json:"sender"`
	PostID      *int             `json:"post_id,omitempty"`
	CommentID   *int             `json:"comment_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

type NotificationModel struct {
	db *sql.DB
}

type NotificationService struct {
	m *NotificationModel
}
