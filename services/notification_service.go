package services

import (
	"context"
	"strings"

	"workshop_tool_tracker/apperr"
	"workshop_tool_tracker/db"
	"workshop_tool_tracker/models"
)

type NotificationService struct {
	repo *db.Repo
}

func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	ns, err := s.repo.ListNotifications(ctx)
	if err != nil {
		return nil, internal(err, "list notifications")
	}
	return ns, nil
}

// MarkRead is idempotent: an already read notification is a success.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.New(apperr.CodeValidation, "Notification ID is required")
	}
	found, err := s.repo.MarkNotificationRead(ctx, id)
	if err != nil {
		return internal(err, "mark notification read")
	}
	if !found {
		return apperr.New(apperr.CodeNotFound, "Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkAllNotificationsRead(ctx)
	if err != nil {
		return 0, internal(err, "mark all notifications read")
	}
	return n, nil
}
