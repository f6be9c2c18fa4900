package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workshop_tool_tracker/apperr"
	"workshop_tool_tracker/db"
	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/metrics"
	"workshop_tool_tracker/models"
	"workshop_tool_tracker/qr"
)

const maxCodeAttempts = 5

const (
	msgToolNotFound     = "Tool not found"
	msgDeleteBorrowed   = "cannot delete borrowed tool"
	msgDeleteHasHistory = "tool has borrow history, use force delete"
)

type ToolService struct {
	repo    *db.Repo
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
	newCode func() (string, error)
	render  func(string) (string, error)
}

func newToolService(opts Options) *ToolService {
	return &ToolService{
		repo:    opts.Repo,
		metrics: opts.Metrics,
		log:     opts.Logger,
		now:     opts.Now,
		newCode: qr.NewCode,
		render:  qr.DataURL,
	}
}

type CreateToolInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type UpdateToolInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Create registers a tool under a fresh short code and records a
// notification for it.
func (s *ToolService) Create(ctx context.Context, in CreateToolInput) (*models.Tool, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in, "Tool name is required"); err != nil {
		return nil, err
	}
	desc := trimmedOrNil(in.Description)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, err, "generate tool code")
		}
		taken, err := s.repo.ToolExists(ctx, code)
		if err != nil {
			return nil, internal(err, "check tool code")
		}
		if taken {
			continue
		}
		qrURL, err := s.render(code)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, err, "render qr code")
		}

		now := s.now()
		tool := &models.Tool{
			ID:          code,
			Name:        in.Name,
			Description: desc,
			QRCode:      qrURL,
			Status:      models.ToolAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = s.repo.WithTx(ctx, func(tx *db.Repo) error {
			if err := tx.CreateTool(ctx, tool); err != nil {
				return err
			}
			// 原系统没有 tool_added 类型，沿用 borrow
			msg := fmt.Sprintf("New tool \"%s\" has been added to the system", tool.Name)
			return notify(ctx, tx, models.NotificationBorrow, msg, tool.ID, nil, now)
		})
		if db.IsUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, internal(err, "create tool")
		}

		s.metrics.IncEvent(metrics.EventCreated)
		s.log.Info(s.log.WithFields(ctx, map[string]any{"tool_id": tool.ID, "name": tool.Name}), "tool.created")
		return tool, nil
	}
	return nil, apperr.New(apperr.CodeInternal, "could not allocate a unique tool code")
}

func (s *ToolService) List(ctx context.Context) ([]models.Tool, error) {
	tools, err := s.repo.ListTools(ctx)
	if err != nil {
		return nil, internal(err, "list tools")
	}
	return tools, nil
}

func (s *ToolService) Get(ctx context.Context, id string) (*models.Tool, error) {
	return s.find(ctx, s.repo, id)
}

// GetByCode resolves a scanned code. Codes are the tool ids.
func (s *ToolService) GetByCode(ctx context.Context, code string) (*models.Tool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.New(apperr.CodeValidation, "QR code is required")
	}
	return s.find(ctx, s.repo, code)
}

func (s *ToolService) find(ctx context.Context, repo *db.Repo, id string) (*models.Tool, error) {
	tool, err := repo.FindToolByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, apperr.New(apperr.CodeNotFound, msgToolNotFound)
	}
	if err != nil {
		return nil, internal(err, "load tool")
	}
	return tool, nil
}

// Update applies a partial edit. Status may only move between available and
// maintenance; borrowed is owned by borrow and return.
func (s *ToolService) Update(ctx context.Context, id string, in UpdateToolInput) (*models.Tool, error) {
	var updated *models.Tool
	err := s.repo.WithTx(ctx, func(tx *db.Repo) error {
		tool, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		fields := map[string]any{"updated_at": now}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.New(apperr.CodeValidation, "Tool name cannot be empty")
			}
			fields["name"] = name
			tool.Name = name
		}
		if in.Description != nil {
			tool.Description = trimmedOrNil(in.Description)
			fields["description"] = tool.Description
		}
		if in.Status != nil {
			next, err := models.ParseToolStatus(*in.Status)
			if err != nil {
				return apperr.Wrap(apperr.CodeValidation, err, "Status must be one of available, borrowed, maintenance")
			}
			if _, err := tool.Status.SetManually(next); err != nil {
				msg := fmt.Sprintf("Tool is currently %s, return it first", tool.Status)
				if tool.Status != models.ToolBorrowed {
					msg = "Tools can only be marked borrowed by borrowing them"
				}
				return apperr.Wrap(apperr.CodeConflict, err, msg)
			}
			if next != tool.Status {
				ok, err := tx.SetToolStatusIf(ctx, tool.ID, tool.Status, next, now)
				if err != nil {
					return err
				}
				if !ok {
					return apperr.New(apperr.CodeConflict, "Tool status changed concurrently, reload and retry")
				}
				tool.Status = next
			}
		}

		if err := tx.UpdateTool(ctx, tool.ID, fields); err != nil {
			return err
		}
		tool.UpdatedAt = now
		msg := fmt.Sprintf("Tool \"%s\" has been updated", tool.Name)
		if err := notify(ctx, tx, models.NotificationBorrow, msg, tool.ID, nil, now); err != nil {
			return err
		}
		updated = tool
		return nil
	})
	if err != nil {
		return nil, internal(err, "update tool")
	}

	s.metrics.IncEvent(metrics.EventUpdated)
	s.log.Info(s.log.WithField(ctx, "tool_id", updated.ID), "tool.updated")
	return updated, nil
}

// Delete removes a tool that was never borrowed, together with its
// notifications.
func (s *ToolService) Delete(ctx context.Context, id string) error {
	err := s.repo.WithTx(ctx, func(tx *db.Repo) error {
		tool, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if tool.Status == models.ToolBorrowed {
			return apperr.New(apperr.CodeConflict, msgDeleteBorrowed)
		}
		n, err := tx.CountBorrowRecordsForTool(ctx, tool.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.CodeConflict, msgDeleteHasHistory)
		}
		if err := tx.DeleteNotificationsForTool(ctx, tool.ID); err != nil {
			return err
		}
		return tx.DeleteTool(ctx, tool.ID)
	})
	if err != nil {
		return internal(err, "delete tool")
	}
	s.metrics.IncEvent(metrics.EventDeleted)
	s.log.Info(s.log.WithField(ctx, "tool_id", id), "tool.deleted")
	return nil
}

// ForceDelete removes notifications, borrow records and the tool, in that
// order. A borrowed tool still cannot be removed.
func (s *ToolService) ForceDelete(ctx context.Context, id string) error {
	err := s.repo.WithTx(ctx, func(tx *db.Repo) error {
		tool, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if tool.Status == models.ToolBorrowed {
			return apperr.New(apperr.CodeConflict, msgDeleteBorrowed)
		}
		if err := tx.DeleteNotificationsForTool(ctx, tool.ID); err != nil {
			return err
		}
		if err := tx.DeleteBorrowRecordsForTool(ctx, tool.ID); err != nil {
			return err
		}
		return tx.DeleteTool(ctx, tool.ID)
	})
	if err != nil {
		return internal(err, "force delete tool")
	}
	s.metrics.IncEvent(metrics.EventDeleted)
	s.log.Info(s.log.WithFields(ctx, map[string]any{"tool_id": id, "force": true}), "tool.deleted")
	return nil
}
