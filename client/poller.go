package client

import (
	"context"
	"time"

	"workshop_tool_tracker/models"
)

const DefaultPollInterval = 15 * time.Second

// Snapshot is one poll result.
type Snapshot struct {
	Notifications []models.Notification
	Unread        int
	FetchedAt     time.Time
}

type notificationLister interface {
	ListNotifications(ctx context.Context) ([]models.Notification, error)
}

// Poller fetches the notification feed on a fixed interval. Fetches run
// inline in the loop, so at most one request is in flight and ticks that
// land during a slow fetch are coalesced.
type Poller struct {
	src      notificationLister
	interval time.Duration
	onUpdate func(Snapshot)
	onError  func(error)
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func OnError(fn func(error)) PollerOption {
	return func(p *Poller) { p.onError = fn }
}

func NewPoller(src notificationLister, onUpdate func(Snapshot), opts ...PollerOption) *Poller {
	p := &Poller{src: src, interval: DefaultPollInterval, onUpdate: onUpdate}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Run polls immediately and then every interval until ctx is cancelled.
// It returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	ns, err := p.src.ListNotifications(ctx)
	if err != nil {
		if ctx.Err() == nil && p.onError != nil {
			p.onError(err)
		}
		return
	}
	if p.onUpdate != nil {
		p.onUpdate(Snapshot{Notifications: ns, Unread: CountUnread(ns), FetchedAt: time.Now()})
	}
}

func CountUnread(ns []models.Notification) int {
	n := 0
	for _, note := range ns {
		if !note.Read {
			n++
		}
	}
	return n
}
