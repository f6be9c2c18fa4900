package models

import (
	"errors"
	"fmt"
	"strings"
)

type ToolStatus string

const (
	ToolAvailable   ToolStatus = "available"
	ToolBorrowed    ToolStatus = "borrowed"
	ToolMaintenance ToolStatus = "maintenance"
)

var ErrInvalidTransition = errors.New("invalid status transition")

func ParseToolStatus(s string) (ToolStatus, error) {
	switch st := ToolStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case ToolAvailable, ToolBorrowed, ToolMaintenance:
		return st, nil
	}
	return "", fmt.Errorf("invalid tool status %q: must be one of available, borrowed, maintenance", s)
}

// Borrow: available -> borrowed
func (s ToolStatus) Borrow() (ToolStatus, error) {
	if s != ToolAvailable {
		return s, fmt.Errorf("%w: tool is currently %s", ErrInvalidTransition, s)
	}
	return ToolBorrowed, nil
}

// Return: borrowed -> available
func (s ToolStatus) Return() (ToolStatus, error) {
	if s != ToolBorrowed {
		return s, fmt.Errorf("%w: tool is currently %s", ErrInvalidTransition, s)
	}
	return ToolAvailable, nil
}

// SetManually covers explicit edits. Only available and maintenance can be
// swapped by hand; borrowed is entered and left through borrow/return.
func (s ToolStatus) SetManually(next ToolStatus) (ToolStatus, error) {
	if next == s {
		return s, nil
	}
	if s == ToolBorrowed {
		return s, fmt.Errorf("%w: tool is currently borrowed, return it first", ErrInvalidTransition)
	}
	if next == ToolBorrowed {
		return s, fmt.Errorf("%w: use borrow to lend a tool", ErrInvalidTransition)
	}
	return next, nil
}

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "active"
	BorrowReturned BorrowStatus = "returned"
)

// Close: active -> returned (terminal)
func (s BorrowStatus) Close() (BorrowStatus, error) {
	if s != BorrowActive {
		return s, fmt.Errorf("%w: borrow record is %s", ErrInvalidTransition, s)
	}
	return BorrowReturned, nil
}

type NotificationType string

const (
	NotificationBorrow  NotificationType = "borrow"
	NotificationReturn  NotificationType = "return"
	NotificationOverdue NotificationType = "overdue"
)

func ParseNotificationType(s string) (NotificationType, error) {
	switch t := NotificationType(strings.ToLower(strings.TrimSpace(s))); t {
	case NotificationBorrow, NotificationReturn, NotificationOverdue:
		return t, nil
	}
	return "", fmt.Errorf("invalid notification type %q", s)
}
