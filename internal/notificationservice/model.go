package notificationservice

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

func newNotificationModel(db *sql.DB) *NotificationModel {
	return &NotificationModel{db: db}
}

// getByRecipient returns the recipient's notifications, newest first.
func (m *NotificationModel) getByRecipient(ctx context.Context, recipientID, limit, offset int) ([]Notification, error) {
	query := `
		SELECT n.id, n.notification_type, n.recipient_id, n.sender_id, u.username, n.post_id, n.comment_id, n.is_read, n.created_at
		FROM notifications n
		JOIN users u ON n.sender_id = u.id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := m.db.QueryContext(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var postID, commentID sql.NullInt64

		err := rows.Scan(&n.ID, &n.Type, &n.RecipientID, &n.Sender.ID, &n.Sender.Username, &postID, &commentID, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, err
		}

		if postID.Valid {
			id := int(postID.Int64)
			n.PostID = &id
		}
		if commentID.Valid {
			id := int(commentID.Int64)
			n.CommentID = &id
		}

		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// markRead flips the is_read flag. Only the recipient can mark their own
// notification.
func (m *NotificationModel) markRead(ctx context.Context, notificationID, recipientID int) error {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND recipient_id = $2`

	res, err := m.db.ExecContext(ctx, query, notificationID, recipientID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *NotificationModel) unreadCount(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, "SELECT count(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read", recipientID).Scan(&count)
	return count, err
}
