package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workshop_tool_tracker/client"

	"github.com/spf13/cobra"
)

func newNotificationsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "notifications", Aliases: []string{"notes"}, Short: "Read the notification feed"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ns, err := c.client().ListNotifications(cmd.Context())
			if err != nil {
				return err
			}
			return c.printNotifications(ns)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client().MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Marked as read")
			return nil
		},
	})

	var each bool
	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api := c.client()
			var (
				n   int
				err error
			)
			if each {
				n, err = api.MarkEachRead(cmd.Context())
			} else {
				n, err = api.MarkAllRead(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d notification(s) marked as read\n", n)
			return nil
		},
	}
	readAll.Flags().BoolVar(&each, "each", false, "mark one by one instead of the bulk endpoint")
	cmd.AddCommand(readAll)

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Poll the feed and print the unread count until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var newest time.Time
			p := client.NewPoller(c.client(), func(s client.Snapshot) {
				fmt.Fprintf(c.out, "[%s] %d unread\n", s.FetchedAt.Local().Format(time.TimeOnly), s.Unread)
				if !newest.IsZero() {
					for i := len(s.Notifications) - 1; i >= 0; i-- {
						if n := s.Notifications[i]; n.CreatedAt.After(newest) {
							fmt.Fprintf(c.out, "  new: %s\n", n.Message)
						}
					}
				}
				if len(s.Notifications) > 0 {
					newest = s.Notifications[0].CreatedAt
				}
			},
				client.WithInterval(interval),
				client.OnError(func(err error) { fmt.Fprintln(cmd.ErrOrStderr(), "poll failed:", err) }),
			)
			err := p.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	watch.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "poll interval")
	cmd.AddCommand(watch)

	return cmd
}
