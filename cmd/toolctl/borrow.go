package main

import (
	"fmt"
	"os"
	"time"

	"workshop_tool_tracker/client"
	"workshop_tool_tracker/models"
	"workshop_tool_tracker/qr"

	"github.com/spf13/cobra"
)

type borrowFlags struct {
	borrower, location, purpose string
}

func (f *borrowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.borrower, "borrower", "", "borrower name")
	cmd.Flags().StringVar(&f.location, "location", "", "where the tool will be used")
	cmd.Flags().StringVar(&f.purpose, "purpose", "", "what it is borrowed for")
}

func (f *borrowFlags) any() bool { return f.borrower != "" || f.location != "" || f.purpose != "" }

func (f *borrowFlags) validate() error {
	return requireFlags(map[string]string{"borrower": f.borrower, "location": f.location, "purpose": f.purpose})
}

func (f *borrowFlags) request(toolID string) client.BorrowRequest {
	return client.BorrowRequest{ToolID: toolID, BorrowerName: f.borrower, BorrowerLocation: f.location, Purpose: f.purpose}
}

func (c *cli) printBorrowed(rec *models.BorrowRecord) {
	fmt.Fprintf(c.out, "Borrowed. Record %s (return with: toolctl return %s)\n", rec.ID, rec.ID)
}

// scan resolves a code typed by hand or read from a QR image, then borrows
// the tool when borrower flags are given.
func newScanCmd(c *cli) *cobra.Command {
	var image string
	var bf borrowFlags
	cmd := &cobra.Command{
		Use:   "scan [code]",
		Short: "Look a tool up by QR code or image and optionally borrow it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			switch {
			case image != "":
				f, err := os.Open(image)
				if err != nil {
					return err
				}
				defer f.Close()
				if code, err = qr.Decode(f); err != nil {
					return err
				}
			case len(args) == 1:
				code = args[0]
			default:
				return fmt.Errorf("pass a code or --image")
			}

			api := c.client()
			tool, err := api.GetToolByCode(cmd.Context(), code)
			if err != nil {
				return err
			}
			c.printTool(tool)
			if !bf.any() {
				return nil
			}
			if tool.Status != models.ToolAvailable {
				return fmt.Errorf("tool is currently %s", tool.Status)
			}
			if err := bf.validate(); err != nil {
				return err
			}
			rec, err := api.Borrow(cmd.Context(), bf.request(tool.ID))
			if err != nil {
				return err
			}
			c.printBorrowed(rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "PNG/JPEG file containing the QR code")
	bf.register(cmd)
	return cmd
}

func newBorrowCmd(c *cli) *cobra.Command {
	var bf borrowFlags
	cmd := &cobra.Command{
		Use:   "borrow <tool-id>",
		Short: "Borrow a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bf.validate(); err != nil {
				return err
			}
			rec, err := c.client().Borrow(cmd.Context(), bf.request(args[0]))
			if err != nil {
				return err
			}
			c.printBorrowed(rec)
			return nil
		},
	}
	bf.register(cmd)
	return cmd
}

func newReturnCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "return <borrow-record-id>",
		Short: "Return a borrowed tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.client().Return(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Returned record %s\n", rec.ID)
			return nil
		},
	}
}

func newRecordsCmd(c *cli) *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List borrow records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api := c.client()
			var (
				recs []models.BorrowRecord
				err  error
			)
			if active {
				recs, err = api.ListActiveRecords(cmd.Context())
			} else {
				recs, err = api.ListRecords(cmd.Context())
			}
			if err != nil {
				return err
			}
			return c.printRecords(recs)
		},
	}
	cmd.Flags().BoolVar(&active, "active", false, "only records not yet returned")
	return cmd
}

func newOverdueCmd(c *cli) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "Flag borrows older than the threshold with an overdue notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.client().NotifyOverdue(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d overdue notification(s) created\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "threshold such as 48h (server default when unset)")
	return cmd
}
