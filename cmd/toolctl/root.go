package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"workshop_tool_tracker/client"
	"workshop_tool_tracker/models"

	"github.com/spf13/cobra"
)

type cli struct {
	baseURL string
	out     io.Writer
}

func (c *cli) client() *client.Client {
	return client.New(c.baseURL)
}

func newRootCmd() *cobra.Command {
	c := &cli{out: os.Stdout}
	root := &cobra.Command{
		Use:           "toolctl",
		Short:         "Workshop tool tracker command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.out = cmd.OutOrStdout()
		},
	}
	defaultURL := os.Getenv("TOOLCTL_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&c.baseURL, "url", defaultURL, "API base URL (env TOOLCTL_URL)")

	root.AddCommand(
		newToolsCmd(c),
		newScanCmd(c),
		newBorrowCmd(c),
		newReturnCmd(c),
		newRecordsCmd(c),
		newNotificationsCmd(c),
		newOverdueCmd(c),
	)
	return root
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
}

func (c *cli) printTools(tools []models.Tool) error {
	w := c.table()
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDESCRIPTION")
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Status, deref(t.Description))
	}
	return w.Flush()
}

func (c *cli) printTool(t *models.Tool) {
	fmt.Fprintf(c.out, "ID:          %s\n", t.ID)
	fmt.Fprintf(c.out, "Name:        %s\n", t.Name)
	fmt.Fprintf(c.out, "Status:      %s\n", t.Status)
	fmt.Fprintf(c.out, "Description: %s\n", deref(t.Description))
	fmt.Fprintf(c.out, "Updated:     %s\n", t.UpdatedAt.Local().Format(time.DateTime))
}

func (c *cli) printRecords(recs []models.BorrowRecord) error {
	w := c.table()
	fmt.Fprintln(w, "ID\tTOOL\tBORROWER\tLOCATION\tPURPOSE\tBORROWED\tSTATUS")
	for _, r := range recs {
		tool := r.ToolID
		if r.Tool != nil {
			tool = r.Tool.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, tool, r.BorrowerName, r.BorrowerLocation, r.Purpose,
			r.BorrowedAt.Local().Format(time.DateTime), r.Status)
	}
	return w.Flush()
}

func (c *cli) printNotifications(ns []models.Notification) error {
	w := c.table()
	fmt.Fprintln(w, "ID\tTYPE\tREAD\tCREATED\tMESSAGE")
	for _, n := range ns {
		read := " "
		if n.Read {
			read = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Type, read, n.CreatedAt.Local().Format(time.DateTime), n.Message)
	}
	return w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func requireFlags(pairs map[string]string) error {
	var missing []string
	for name, v := range pairs {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	return nil
}
