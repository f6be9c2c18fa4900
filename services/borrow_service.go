package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workshop_tool_tracker/apperr"
	"workshop_tool_tracker/db"
	"workshop_tool_tracker/lock"
	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/metrics"
	"workshop_tool_tracker/models"

	"github.com/google/uuid"
)

const (
	msgBorrowFieldsRequired = "All fields are required: toolId, borrowerName, borrowerLocation, purpose"
	msgActiveNotFound       = "Active borrow record not found"
	msgToolMissing          = "Associated tool not found"

	overdueSweepKey = "notifications:overdue-sweep"
)

type BorrowService struct {
	repo         *db.Repo
	locker       lock.Locker
	metrics      *metrics.Metrics
	log          *logger.Logger
	now          func() time.Time
	overdueAfter time.Duration
}

func newBorrowService(opts Options) *BorrowService {
	return &BorrowService{
		repo:         opts.Repo,
		locker:       opts.Locker,
		metrics:      opts.Metrics,
		log:          opts.Logger,
		now:          opts.Now,
		overdueAfter: opts.OverdueAfter,
	}
}

type BorrowInput struct {
	ToolID           string `json:"toolId" validate:"required"`
	BorrowerName     string `json:"borrowerName" validate:"required"`
	BorrowerLocation string `json:"borrowerLocation" validate:"required"`
	Purpose          string `json:"purpose" validate:"required"`
}

func (in *BorrowInput) trim() {
	in.ToolID = strings.TrimSpace(in.ToolID)
	in.BorrowerName = strings.TrimSpace(in.BorrowerName)
	in.BorrowerLocation = strings.TrimSpace(in.BorrowerLocation)
	in.Purpose = strings.TrimSpace(in.Purpose)
}

// Borrow lends an available tool. Concurrent attempts on one tool yield a
// single active record; the rest fail with a conflict.
func (s *BorrowService) Borrow(ctx context.Context, in BorrowInput) (*models.BorrowRecord, error) {
	in.trim()
	if err := validateInput(in, msgBorrowFieldsRequired); err != nil {
		return nil, err
	}
	ctx = s.log.WithField(ctx, "tool_id", in.ToolID)

	release, err := s.locker.Acquire(ctx, lock.BorrowKey(in.ToolID))
	switch {
	case errors.Is(err, lock.ErrLocked):
		return nil, apperr.New(apperr.CodeConflict, "Tool is being borrowed by another request")
	case err != nil:
		// 锁只是第一道防线，条件更新和唯一索引仍然兜底
		s.log.Error(ctx, "borrow.lock_unavailable", err)
	default:
		defer release()
	}

	var rec *models.BorrowRecord
	err = s.repo.WithTx(ctx, func(tx *db.Repo) error {
		tool, err := tx.FindToolByID(ctx, in.ToolID)
		if db.IsNotFound(err) {
			return apperr.New(apperr.CodeNotFound, msgToolNotFound)
		}
		if err != nil {
			return err
		}
		next, err := tool.Status.Borrow()
		if err != nil {
			return apperr.Wrap(apperr.CodeConflict, err, fmt.Sprintf("Tool is currently %s", tool.Status))
		}

		now := s.now()
		ok, err := tx.SetToolStatusIf(ctx, tool.ID, tool.Status, next, now)
		if err != nil {
			return err
		}
		if !ok {
			current := models.ToolBorrowed
			if fresh, ferr := tx.FindToolByID(ctx, tool.ID); ferr == nil {
				current = fresh.Status
			}
			return apperr.Newf(apperr.CodeConflict, "Tool is currently %s", current)
		}
		tool.Status = next
		tool.UpdatedAt = now

		rec = &models.BorrowRecord{
			ID:               uuid.NewString(),
			ToolID:           tool.ID,
			BorrowerName:     in.BorrowerName,
			BorrowerLocation: in.BorrowerLocation,
			Purpose:          in.Purpose,
			BorrowedAt:       now,
			Status:           models.BorrowActive,
		}
		if err := tx.CreateBorrowRecord(ctx, rec); err != nil {
			if db.IsUniqueViolation(err) {
				s.log.Debug(s.log.WithField(ctx, "constraint", db.ConstraintName(err)), "borrow.active_record_exists")
				return apperr.Wrap(apperr.CodeConflict, err, "Tool is currently borrowed")
			}
			return err
		}
		rec.Tool = tool

		msg := fmt.Sprintf("Tool \"%s\" borrowed by %s for %s", tool.Name, in.BorrowerName, in.Purpose)
		return notify(ctx, tx, models.NotificationBorrow, msg, tool.ID, &rec.ID, now)
	})
	if err != nil {
		return nil, internal(err, "borrow tool")
	}

	s.metrics.IncEvent(metrics.EventBorrowed)
	s.log.Info(s.log.WithFields(ctx, map[string]any{"borrow_record_id": rec.ID, "borrower": rec.BorrowerName}), "tool.borrowed")
	return rec, nil
}

// Return closes an active record and makes its tool available again.
func (s *BorrowService) Return(ctx context.Context, borrowRecordID string) (*models.BorrowRecord, error) {
	borrowRecordID = strings.TrimSpace(borrowRecordID)
	if borrowRecordID == "" {
		return nil, apperr.New(apperr.CodeValidation, "Borrow record ID is required")
	}
	ctx = s.log.WithField(ctx, "borrow_record_id", borrowRecordID)

	var rec *models.BorrowRecord
	err := s.repo.WithTx(ctx, func(tx *db.Repo) error {
		active, err := tx.FindActiveBorrowRecord(ctx, borrowRecordID)
		if db.IsNotFound(err) {
			return apperr.New(apperr.CodeNotFound, msgActiveNotFound)
		}
		if err != nil {
			return err
		}
		if _, err := active.Status.Close(); err != nil {
			return apperr.Wrap(apperr.CodeNotFound, err, msgActiveNotFound)
		}

		now := s.now()
		ok, err := tx.CloseBorrowRecord(ctx, active.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.CodeNotFound, msgActiveNotFound)
		}

		tool, err := tx.FindToolByID(ctx, active.ToolID)
		if db.IsNotFound(err) {
			return apperr.New(apperr.CodeNotFound, msgToolMissing)
		}
		if err != nil {
			return err
		}
		next, err := tool.Status.Return()
		if err != nil {
			return apperr.Wrap(apperr.CodeConflict, err, fmt.Sprintf("Tool is currently %s", tool.Status))
		}
		ok, err = tx.SetToolStatusIf(ctx, tool.ID, tool.Status, next, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.CodeConflict, "Tool status changed concurrently, reload and retry")
		}
		tool.Status = next
		tool.UpdatedAt = now

		msg := fmt.Sprintf("Tool \"%s\" returned by %s", tool.Name, active.BorrowerName)
		if err := notify(ctx, tx, models.NotificationReturn, msg, tool.ID, &active.ID, now); err != nil {
			return err
		}

		rec, err = tx.FindBorrowRecord(ctx, active.ID)
		if err != nil {
			return err
		}
		rec.Tool = tool
		return nil
	})
	if err != nil {
		return nil, internal(err, "return tool")
	}

	s.metrics.IncEvent(metrics.EventReturned)
	s.log.Info(s.log.WithField(ctx, "tool_id", rec.ToolID), "tool.returned")
	return rec, nil
}

func (s *BorrowService) List(ctx context.Context) ([]models.BorrowRecord, error) {
	recs, err := s.repo.ListBorrowRecords(ctx, false)
	if err != nil {
		return nil, internal(err, "list borrow records")
	}
	return recs, nil
}

func (s *BorrowService) ListActive(ctx context.Context) ([]models.BorrowRecord, error) {
	recs, err := s.repo.ListBorrowRecords(ctx, true)
	if err != nil {
		return nil, internal(err, "list active borrow records")
	}
	return recs, nil
}

// NotifyOverdue emits one overdue notification for every active record
// borrowed longer than olderThan ago (the configured default when <= 0).
// Records already flagged are skipped. Returns how many were emitted.
func (s *BorrowService) NotifyOverdue(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = s.overdueAfter
	}

	release, err := s.locker.Acquire(ctx, overdueSweepKey)
	if errors.Is(err, lock.ErrLocked) {
		return 0, apperr.New(apperr.CodeConflict, "Overdue check already running")
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeDependency, err, "acquire overdue lock")
	}
	defer release()

	now := s.now()
	cutoff := now.Add(-olderThan)
	emitted := 0
	err = s.repo.WithTx(ctx, func(tx *db.Repo) error {
		recs, err := tx.ListOverdueCandidates(ctx, cutoff)
		if err != nil {
			return err
		}
		for i := range recs {
			rec := recs[i]
			name := rec.ToolID
			if rec.Tool != nil {
				name = rec.Tool.Name
			}
			msg := fmt.Sprintf("Tool \"%s\" borrowed by %s is overdue (borrowed %s)",
				name, rec.BorrowerName, rec.BorrowedAt.UTC().Format("2006-01-02 15:04 MST"))
			if err := notify(ctx, tx, models.NotificationOverdue, msg, rec.ToolID, &rec.ID, now); err != nil {
				return err
			}
			emitted++
		}
		return nil
	})
	if err != nil {
		return 0, internal(err, "notify overdue")
	}

	s.metrics.AddEvents(metrics.EventOverdue, emitted)
	s.log.Info(s.log.WithFields(ctx, map[string]any{"emitted": emitted, "older_than": olderThan.String()}), "borrow.overdue_checked")
	return emitted, nil
}
