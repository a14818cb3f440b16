package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *CLI) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show site counters and the most viewed posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := c.app.Features().Dashboard.Load(cmd.Context())
			if err != nil {
				return err
			}

			p := c.printer(cmd)
			if p.json {
				return p.encode(dash)
			}

			s := dash.Stats
			if err := p.result(nil, []string{"POSTS", "PUBLISHED", "DRAFTS", "CATEGORIES", "TAGS", "USERS", "TRASHED", "VIEWS"},
				[][]string{{
					strconv.Itoa(s.Posts), strconv.Itoa(s.Published), strconv.Itoa(s.Drafts),
					strconv.Itoa(s.Categories), strconv.Itoa(s.Tags), strconv.Itoa(s.Users),
					strconv.Itoa(s.Trashed), strconv.FormatInt(s.Views, 10),
				}},
			); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			rows := make([][]string, 0, len(dash.Popular))
			for _, post := range dash.Popular {
				rows = append(rows, []string{post.ID, post.Title, strconv.FormatInt(post.Views, 10)})
			}
			return p.result(nil, []string{"POPULAR", "TITLE", "VIEWS"}, rows)
		},
	}
}
