package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolStatus(t *testing.T) {
	for _, in := range []string{"available", " Borrowed ", "MAINTENANCE"} {
		_, err := ParseToolStatus(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseToolStatus("lost")
	assert.Error(t, err)
	_, err = ParseToolStatus("")
	assert.Error(t, err)
}

func TestToolStatusTransitions(t *testing.T) {
	next, err := ToolAvailable.Borrow()
	require.NoError(t, err)
	assert.Equal(t, ToolBorrowed, next)

	_, err = ToolBorrowed.Borrow()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = ToolMaintenance.Borrow()
	assert.ErrorContains(t, err, "currently maintenance")

	next, err = ToolBorrowed.Return()
	require.NoError(t, err)
	assert.Equal(t, ToolAvailable, next)
	_, err = ToolAvailable.Return()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestToolStatusSetManually(t *testing.T) {
	cases := []struct {
		from, to ToolStatus
		ok       bool
	}{
		{ToolAvailable, ToolMaintenance, true},
		{ToolMaintenance, ToolAvailable, true},
		{ToolAvailable, ToolAvailable, true},
		{ToolBorrowed, ToolBorrowed, true},
		{ToolAvailable, ToolBorrowed, false},
		{ToolBorrowed, ToolMaintenance, false},
		{ToolBorrowed, ToolAvailable, false},
	}
	for _, tc := range cases {
		got, err := tc.from.SetManually(tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, got)
		}
	}
}

func TestBorrowStatusClose(t *testing.T) {
	next, err := BorrowActive.Close()
	require.NoError(t, err)
	assert.Equal(t, BorrowReturned, next)

	_, err = BorrowReturned.Close()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParseNotificationType(t *testing.T) {
	got, err := ParseNotificationType("Overdue")
	require.NoError(t, err)
	assert.Equal(t, NotificationOverdue, got)

	_, err = ParseNotificationType("tool_added")
	assert.Error(t, err)
}
