package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/core/domain"
)

func (c *CLI) newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List and edit tags",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := c.app.Features().Tags.List().Get(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				rows = append(rows, []string{tag.ID, tag.Name, tag.Slug, strconv.Itoa(tag.PostCount)})
			}
			return c.printer(cmd).result(tags, []string{"ID", "NAME", "SLUG", "POSTS"}, rows)
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := c.app.Features().Tags.Create.Run(cmd.Context(), domain.TagInput{Name: args[0]})
			if err != nil {
				return err
			}
			return c.printer(cmd).done(tag, "created tag "+tag.Name)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Features().Tags.Delete.Run(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.printer(cmd).done(map[string]string{"deleted": args[0]}, "deleted tag "+args[0])
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}

func (c *CLI) newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and edit categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := c.app.Features().Categories.List().Get(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				rows = append(rows, []string{cat.ID, cat.Name, cat.Slug, strconv.Itoa(cat.PostCount)})
			}
			return c.printer(cmd).result(categories, []string{"ID", "NAME", "SLUG", "POSTS"}, rows)
		},
	}

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.app.Features().Categories.Create.Run(cmd.Context(), domain.CategoryInput{Name: args[0], Description: description})
			if err != nil {
				return err
			}
			return c.printer(cmd).done(cat, "created category "+cat.Name)
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "Category description")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Features().Categories.Delete.Run(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.printer(cmd).done(map[string]string{"deleted": args[0]}, "deleted category "+args[0])
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}
