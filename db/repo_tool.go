package db

import (
	"context"
	"time"

	"workshop_tool_tracker/models"
)

// Tools
func (r *Repo) CreateTool(ctx context.Context, t *models.Tool) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *Repo) FindToolByID(ctx context.Context, id string) (*models.Tool, error) {
	var t models.Tool
	if err := r.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ToolExists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Tool{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *Repo) ListTools(ctx context.Context) ([]models.Tool, error) {
	tools := []models.Tool{}
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&tools).Error
	return tools, err
}

func (r *Repo) CountTools(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Tool{}).Count(&n).Error
	return n, err
}

// UpdateTool writes only the provided columns.
func (r *Repo) UpdateTool(ctx context.Context, id string, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&models.Tool{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SetToolStatusIf 条件更新：只有当前状态为 from 时才改为 to，
// 返回 false 表示状态已被别的请求改掉
func (r *Repo) SetToolStatusIf(ctx context.Context, id string, from, to models.ToolStatus, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Tool{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) DeleteTool(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Tool{}).Error
}
