package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"workshop_tool_tracker/db"
	"workshop_tool_tracker/db/dbtest"
	"workshop_tool_tracker/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTool(t *testing.T, repo *db.Repo, id string, createdAt time.Time) *models.Tool {
	t.Helper()
	tool := &models.Tool{
		ID:        id,
		Name:      "Tool " + id,
		QRCode:    "data:" + id,
		Status:    models.ToolAvailable,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, repo.CreateTool(context.Background(), tool))
	return tool
}

func seedRecord(t *testing.T, repo *db.Repo, toolID string, borrowedAt time.Time) *models.BorrowRecord {
	t.Helper()
	rec := &models.BorrowRecord{
		ID:               uuid.NewString(),
		ToolID:           toolID,
		BorrowerName:     "Alice",
		BorrowerLocation: "Shop A",
		Purpose:          "project",
		BorrowedAt:       borrowedAt,
		Status:           models.BorrowActive,
	}
	require.NoError(t, repo.CreateBorrowRecord(context.Background(), rec))
	return rec
}

func TestListToolsNewestFirst(t *testing.T) {
	repo := db.NewRepo(dbtest.New(t))
	base := time.Now().UTC().Add(-time.Hour)
	seedTool(t, repo, "aaaa0001", base)
	seedTool(t, repo, "aaaa0002", base.Add(time.Minute))

	tools, err := repo.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "aaaa0002", tools[0].ID)
	assert.Equal(t, "aaaa0001", tools[1].ID)
}

func TestFindToolByIDNotFound(t *testing.T) {
	repo := db.NewRepo(dbtest.New(t))

	_, err := repo.FindToolByID(context.Background(), "missing")
	assert.True(t, db.IsNotFound(err))
}

func TestSetToolStatusIfIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.New(t))
	seedTool(t, repo, "cond0001", time.Now().UTC())

	ok, err := repo.SetToolStatusIf(ctx, "cond0001", models.ToolAvailable, models.ToolBorrowed, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetToolStatusIf(ctx, "cond0001", models.ToolAvailable, models.ToolBorrowed, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok, "second conditional update must not match")

	tool, err := repo.FindToolByID(ctx, "cond0001")
	require.NoError(t, err)
	assert.Equal(t, models.ToolBorrowed, tool.Status)
}

func TestOneActiveRecordPerToolIndex(t *testing.T) {
	repo := db.NewRepo(dbtest.New(t))
	seedTool(t, repo, "uniq0001", time.Now().UTC())
	seedRecord(t, repo, "uniq0001", time.Now().UTC())

	dup := &models.BorrowRecord{
		ID:               uuid.NewString(),
		ToolID:           "uniq0001",
		BorrowerName:     "Bob",
		BorrowerLocation: "Shop B",
		Purpose:          "other",
		BorrowedAt:       time.Now().UTC(),
		Status:           models.BorrowActive,
	}
	err := repo.CreateBorrowRecord(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))

	// a returned record for the same tool is fine
	dup.Status = models.BorrowReturned
	require.NoError(t, repo.CreateBorrowRecord(context.Background(), dup))
}

func TestConstraintName(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "borrow_records_one_active_per_tool"}
	wrapped := fmt.Errorf("insert: %w", pgErr)
	assert.True(t, db.IsUniqueViolation(wrapped))
	assert.Equal(t, "borrow_records_one_active_per_tool", db.ConstraintName(wrapped))
	assert.Empty(t, db.ConstraintName(errors.New("UNIQUE constraint failed: borrow_records.tool_id")))
}

func TestCloseBorrowRecordOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.New(t))
	seedTool(t, repo, "close001", time.Now().UTC())
	rec := seedRecord(t, repo, "close001", time.Now().UTC())

	ok, err := repo.CloseBorrowRecord(ctx, rec.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CloseBorrowRecord(ctx, rec.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindActiveBorrowRecord(ctx, rec.ID)
	assert.True(t, db.IsNotFound(err))

	got, err := repo.FindBorrowRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowReturned, got.Status)
	assert.NotNil(t, got.ReturnedAt)
}

func TestListBorrowRecordsPreloadsTool(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.New(t))
	seedTool(t, repo, "list0001", time.Now().UTC())
	seedTool(t, repo, "list0002", time.Now().UTC())
	old := seedRecord(t, repo, "list0001", time.Now().UTC().Add(-time.Hour))
	_, err := repo.CloseBorrowRecord(ctx, old.ID, time.Now().UTC())
	require.NoError(t, err)
	seedRecord(t, repo, "list0002", time.Now().UTC())

	all, err := repo.ListBorrowRecords(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "list0002", all[0].ToolID)
	require.NotNil(t, all[0].Tool)
	assert.Equal(t, "Tool list0002", all[0].Tool.Name)

	active, err := repo.ListBorrowRecords(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "list0002", active[0].ToolID)
}

func TestMarkNotificationReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.New(t))
	seedTool(t, repo, "note0001", time.Now().UTC())
	n := &models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationBorrow,
		Message:   "hello",
		ToolID:    "note0001",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateNotification(ctx, n))

	found, err := repo.MarkNotificationRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.MarkNotificationRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, found, "already read still counts as found")

	found, err = repo.MarkNotificationRead(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListNotificationsAttachesToolSummary(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.New(t))
	seedTool(t, repo, "sum00001", time.Now().UTC())
	now := time.Now().UTC()
	for i, msg := range []string{"first", "second"} {
		require.NoError(t, repo.CreateNotification(ctx, &models.Notification{
			ID:        uuid.NewString(),
			Type:      models.NotificationBorrow,
			Message:   msg,
			ToolID:    "sum00001",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}))
	}

	ns, err := repo.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, "second", ns[0].Message)
	require.NotNil(t, ns[0].ToolInfo)
	assert.Equal(t, "Tool sum00001", ns[0].ToolInfo.Name)

	count, err := repo.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	count, err = repo.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListOverdueCandidatesSkipsFlagged(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.New(t))
	now := time.Now().UTC()
	seedTool(t, repo, "over0001", now)
	seedTool(t, repo, "over0002", now)
	seedTool(t, repo, "over0003", now)
	stale := seedRecord(t, repo, "over0001", now.Add(-72*time.Hour))
	flagged := seedRecord(t, repo, "over0002", now.Add(-72*time.Hour))
	seedRecord(t, repo, "over0003", now.Add(-time.Hour))

	flaggedID := flagged.ID
	require.NoError(t, repo.CreateNotification(ctx, &models.Notification{
		ID:             uuid.NewString(),
		Type:           models.NotificationOverdue,
		Message:        "late",
		ToolID:         "over0002",
		BorrowRecordID: &flaggedID,
		CreatedAt:      now,
	}))

	recs, err := repo.ListOverdueCandidates(ctx, now.Add(-48*time.Hour))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, stale.ID, recs[0].ID)
	require.NotNil(t, recs[0].Tool)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := db.NewRepo(dbtest.New(t))
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(tx *db.Repo) error {
		seedTool(t, tx, "roll0001", time.Now().UTC())
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := repo.CountTools(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
