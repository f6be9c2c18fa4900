// Package services holds the tool, borrow and notification use cases. Each
// multi-step mutation runs inside one database transaction.
package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"workshop_tool_tracker/apperr"
	"workshop_tool_tracker/db"
	"workshop_tool_tracker/lock"
	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/metrics"
	"workshop_tool_tracker/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const DefaultOverdueAfter = 48 * time.Hour

type Options struct {
	Repo         *db.Repo
	Locker       lock.Locker
	Metrics      *metrics.Metrics
	Logger       *logger.Logger
	OverdueAfter time.Duration
	Now          func() time.Time
}

type Services struct {
	Tools         *ToolService
	Borrows       *BorrowService
	Notifications *NotificationService
}

func New(opts Options) *Services {
	if opts.Locker == nil {
		opts.Locker = lock.NopLocker{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.OverdueAfter <= 0 {
		opts.OverdueAfter = DefaultOverdueAfter
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Services{
		Tools:         newToolService(opts),
		Borrows:       newBorrowService(opts),
		Notifications: &NotificationService{repo: opts.Repo},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// validateInput runs struct validation and reports any failure with message.
func validateInput(in any, message string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeValidation, err, message)
	}
	return apperr.Wrap(apperr.CodeInternal, err, "validate input")
}

// internal wraps persistence failures, passing typed errors through.
func internal(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperr.As(err) != nil {
		return err
	}
	return apperr.Wrap(apperr.CodeInternal, err, message)
}

func notify(ctx context.Context, repo *db.Repo, typ models.NotificationType, msg, toolID string, recordID *string, at time.Time) error {
	return repo.CreateNotification(ctx, &models.Notification{
		ID:             uuid.NewString(),
		Type:           typ,
		Message:        msg,
		ToolID:         toolID,
		BorrowRecordID: recordID,
		CreatedAt:      at,
	})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
