package db

import (
	"context"

	"workshop_tool_tracker/models"
)

// Notifications
func (r *Repo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Omit("Tool", "BorrowRecord").Create(n).Error
}

// ListNotifications returns the feed newest first with {id, name} of each
// tool attached.
func (r *Repo) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	ns := []models.Notification{}
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&ns).Error; err != nil {
		return nil, err
	}
	if len(ns) == 0 {
		return ns, nil
	}

	ids := make([]string, 0, len(ns))
	seen := make(map[string]struct{}, len(ns))
	for _, n := range ns {
		if _, ok := seen[n.ToolID]; !ok {
			seen[n.ToolID] = struct{}{}
			ids = append(ids, n.ToolID)
		}
	}
	var summaries []models.ToolSummary
	if err := r.DB.WithContext(ctx).Model(&models.Tool{}).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&summaries).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.ToolSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	for i := range ns {
		if s, ok := byID[ns[i].ToolID]; ok {
			s := s
			ns[i].ToolInfo = &s
		}
	}
	return ns, nil
}

// MarkNotificationRead sets read=true. found is false only when no row has
// that id; re-marking an already read notification still reports found.
func (r *Repo) MarkNotificationRead(ctx context.Context, id string) (found bool, err error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		UpdateColumn("read", true)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("read = ?", false).
		UpdateColumn("read", true)
	return res.RowsAffected, res.Error
}

func (r *Repo) DeleteNotificationsForTool(ctx context.Context, toolID string) error {
	return r.DB.WithContext(ctx).Where("tool_id = ?", toolID).Delete(&models.Notification{}).Error
}
