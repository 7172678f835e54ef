package notificationservice

import (
	"context"
	"database/sql"

	"github.com/mikotobay/inkwell/internal/common"
)

func NewNotificationService(db *sql.DB) *NotificationService {
	return &NotificationService{m: newNotificationModel(db)}
}

// List returns the recipient's notifications, newest first. Default limit is
// 20 and default offset is 0. Notifications are never pruned: retracting the
// action that produced one leaves it in place.
func (s *NotificationService) List(ctx context.Context, recipientID int, limit, offset *int) ([]Notification, error) {
	v := common.NewValidator()
	validateInt(v, recipientID, "recipient_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if limit == nil || *limit < 1 {
		limit = new(int)
		*limit = 20
	}

	if offset == nil || *offset < 0 {
		offset = new(int)
	}

	return s.m.getByRecipient(ctx, recipientID, *limit, *offset)
}

// MarkRead marks the notification as read. The recipient ID guards against
// marking someone else's notification.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, recipientID int) error {
	v := common.NewValidator()
	validateInt(v, notificationID, "id")
	validateInt(v, recipientID, "recipient_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.markRead(ctx, notificationID, recipientID)
}

// UnreadCount returns the number of unread notifications for the recipient.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID int) (int, error) {
	v := common.NewValidator()
	validateInt(v, recipientID, "recipient_id")
	if !v.Valid() {
		return 0, v.ValidationError()
	}

	return s.m.unreadCount(ctx, recipientID)
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
