package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newSectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List and reorder layout sections",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List sections in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sections, err := c.app.Features().Sections.List().Get(cmd.Context())
			if err != nil {
				return err
			}
			p := c.printer(cmd)
			rows := make([][]string, 0, len(sections))
			for _, s := range sections {
				visible := p.palette.Muted("hidden")
				if s.Visible {
					visible = "visible"
				}
				rows = append(rows, []string{strconv.Itoa(s.Position), s.ID, s.Name, s.Type, visible})
			}
			return p.result(sections, []string{"#", "ID", "NAME", "TYPE", "VISIBILITY"}, rows)
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the display order of sections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := c.app.Features().Sections.Reorder.Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			return c.printer(cmd).done(sections, "reordered "+strconv.Itoa(len(args))+" sections")
		},
	}

	cmd.AddCommand(list, reorder)
	return cmd
}

func (c *CLI) newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List admin panel accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.app.Features().Users.List().Get(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Name, u.Email, u.Role, formatDate(u.CreatedAt)})
			}
			return c.printer(cmd).result(users, []string{"ID", "NAME", "EMAIL", "ROLE", "CREATED"}, rows)
		},
	})
	return cmd
}

func (c *CLI) newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List post templates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List post templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := c.app.Features().Templates.List().Get(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(templates))
			for _, t := range templates {
				rows = append(rows, []string{t.ID, t.Name, t.Description})
			}
			return c.printer(cmd).result(templates, []string{"ID", "NAME", "DESCRIPTION"}, rows)
		},
	})
	return cmd
}

func (c *CLI) newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "List and delete uploaded files",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := c.app.Features().Media.List().Get(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, m := range items {
				rows = append(rows, []string{m.ID, m.Filename, m.MimeType, strconv.FormatInt(m.Size, 10), formatDate(m.CreatedAt)})
			}
			return c.printer(cmd).result(items, []string{"ID", "FILE", "TYPE", "BYTES", "UPLOADED"}, rows)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Features().Media.Delete.Run(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.printer(cmd).done(map[string]string{"deleted": args[0]}, "deleted file "+args[0])
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

func (c *CLI) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search posts, categories and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			results, err := c.app.Features().Search.Query(term).Get(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Type, r.ID, r.Title, r.Snippet})
			}
			return c.printer(cmd).result(results, []string{"TYPE", "ID", "TITLE", "SNIPPET"}, rows)
		},
	}
}
