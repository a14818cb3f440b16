package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newTrashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Restore or permanently delete trashed posts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List trashed posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := c.app.Features().Trash.List().Get(cmd.Context())
			if err != nil {
				return err
			}
			p := c.printer(cmd)
			rows := make([][]string, 0, len(posts))
			for _, post := range posts {
				rows = append(rows, []string{post.ID, post.Title, p.palette.Badge("trashed"), formatDate(post.DeletedAt)})
			}
			return p.result(posts, []string{"ID", "TITLE", "STATUS", "DELETED"}, rows)
		},
	}

	restore := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a trashed post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := c.app.Features().Trash.Restore.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printer(cmd).done(post, "restored post "+args[0])
		},
	}

	purge := &cobra.Command{
		Use:   "purge <id>",
		Short: "Delete a trashed post permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Features().Trash.Purge.Run(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.printer(cmd).done(map[string]string{"purged": args[0]}, "permanently deleted post "+args[0])
		},
	}

	empty := &cobra.Command{
		Use:   "empty",
		Short: "Delete every trashed post permanently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.Features().Trash.Empty.Run(cmd.Context(), struct{}{}); err != nil {
				return err
			}
			return c.printer(cmd).done(map[string]bool{"emptied": true}, "emptied the trash")
		},
	}

	cmd.AddCommand(list, restore, purge, empty)
	return cmd
}
