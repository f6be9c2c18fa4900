package main

import (
	"errors"
	"fmt"

	"workshop_tool_tracker/client"

	"github.com/spf13/cobra"
)

func newToolsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "tools", Short: "Manage the tool inventory"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all tools, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tools, err := c.client().ListTools(cmd.Context())
			if err != nil {
				return err
			}
			return c.printTools(tools)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := c.client().GetTool(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printTool(tool)
			return nil
		},
	})

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a new tool and print its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.CreateToolRequest{Name: args[0]}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			tool, err := c.client().CreateTool(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.printTool(tool)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "optional description")
	cmd.AddCommand(create)

	var name, desc, status string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit name, description or status (available|maintenance)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req client.UpdateToolRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &desc
			}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			if req == (client.UpdateToolRequest{}) {
				return errors.New("nothing to update: pass --name, --description or --status")
			}
			tool, err := c.client().UpdateTool(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			c.printTool(tool)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "new name")
	update.Flags().StringVar(&desc, "description", "", "new description (empty clears it)")
	update.Flags().StringVar(&status, "status", "", "available or maintenance")
	cmd.AddCommand(update)

	var force bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tool; --force also removes its borrow history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.client()
			if force {
				if err := api.ForceDeleteTool(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Tool and its history deleted")
				return nil
			}
			err := api.DeleteTool(cmd.Context(), args[0])
			if client.IsHistoryConflict(err) {
				return fmt.Errorf("%w\nrerun with --force to delete the tool with its borrow history", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Tool deleted")
			return nil
		},
	}
	del.Flags().BoolVar(&force, "force", false, "delete borrow records and notifications too")
	cmd.AddCommand(del)

	return cmd
}
