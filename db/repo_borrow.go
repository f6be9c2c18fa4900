package db

import (
	"context"
	"time"

	"workshop_tool_tracker/models"
)

// Borrow records
func (r *Repo) CreateBorrowRecord(ctx context.Context, rec *models.BorrowRecord) error {
	return r.DB.WithContext(ctx).Omit("Tool").Create(rec).Error
}

func (r *Repo) FindActiveBorrowRecord(ctx context.Context, id string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	if err := r.DB.WithContext(ctx).
		First(&rec, "id = ? AND status = ?", id, models.BorrowActive).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// CloseBorrowRecord 归还：只关闭仍为 active 的记录，返回 false 表示已被关闭
func (r *Repo) CloseBorrowRecord(ctx context.Context, id string, returnedAt time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("id = ? AND status = ?", id, models.BorrowActive).
		Updates(map[string]any{"status": models.BorrowReturned, "returned_at": returnedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) FindBorrowRecord(ctx context.Context, id string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	if err := r.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListBorrowRecords returns records newest-borrowed first with their tool
// attached (nil when the tool row is gone).
func (r *Repo) ListBorrowRecords(ctx context.Context, activeOnly bool) ([]models.BorrowRecord, error) {
	q := r.DB.WithContext(ctx).Preload("Tool").Order("borrowed_at DESC")
	if activeOnly {
		q = q.Where("status = ?", models.BorrowActive)
	}
	recs := []models.BorrowRecord{}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *Repo) CountActiveBorrowRecords(ctx context.Context, toolID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("tool_id = ? AND status = ?", toolID, models.BorrowActive).
		Count(&n).Error
	return n, err
}

func (r *Repo) CountBorrowRecordsForTool(ctx context.Context, toolID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("tool_id = ?", toolID).
		Count(&n).Error
	return n, err
}

func (r *Repo) DeleteBorrowRecordsForTool(ctx context.Context, toolID string) error {
	return r.DB.WithContext(ctx).Where("tool_id = ?", toolID).Delete(&models.BorrowRecord{}).Error
}

// ListOverdueCandidates returns active records borrowed before cutoff that
// have not been flagged overdue yet.
func (r *Repo) ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]models.BorrowRecord, error) {
	recs := []models.BorrowRecord{}
	err := r.DB.WithContext(ctx).
		Preload("Tool").
		Where("status = ? AND borrowed_at < ?", models.BorrowActive, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM "+models.NotificationTable+" n WHERE n.borrow_record_id = "+
			models.BorrowRecordTable+".id AND n.type = ?)", models.NotificationOverdue).
		Order("borrowed_at ASC").
		Find(&recs).Error
	return recs, err
}
