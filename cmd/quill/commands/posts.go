package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/features"
)

func (c *CLI) newPostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List and edit posts",
	}
	cmd.AddCommand(
		c.newPostsListCmd(),
		c.newPostsGetCmd(),
		c.newPostsCreateCmd(),
		c.newPostsFromTemplateCmd(),
		c.newPostsUpdateCmd(),
		c.newPostsPublishCmd(),
		c.newPostsTrashCmd(),
	)
	return cmd
}

func (c *CLI) printPosts(cmd *cobra.Command, posts []domain.Post) error {
	p := c.printer(cmd)
	rows := make([][]string, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, []string{post.ID, post.Title, p.palette.Badge(string(post.Status)), formatDate(post.UpdatedAt)})
	}
	return p.result(posts, []string{"ID", "TITLE", "STATUS", "UPDATED"}, rows)
}

func (c *CLI) newPostsListCmd() *cobra.Command {
	var filter domain.PostFilter
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Status = domain.PostStatus(status)
			posts, err := c.app.Features().Posts.List(filter).Get(cmd.Context())
			if err != nil {
				return err
			}
			return c.printPosts(cmd, posts)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only posts with this status (draft, published, scheduled)")
	cmd.Flags().StringVar(&filter.CategoryID, "category", "", "Only posts in this category")
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "Only posts with this tag")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&filter.PerPage, "per-page", 0, "Posts per page")
	return cmd
}

func (c *CLI) newPostsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := c.app.Features().Posts.Get(args[0]).Get(cmd.Context())
			if err != nil {
				return err
			}
			p := c.printer(cmd)
			return p.result(post,
				[]string{"ID", "TITLE", "SLUG", "STATUS", "CATEGORY", "TAGS", "UPDATED"},
				[][]string{{
					post.ID, post.Title, post.Slug, p.palette.Badge(string(post.Status)),
					post.CategoryID, strings.Join(post.Tags, ","), formatDate(post.UpdatedAt),
				}},
			)
		},
	}
}

func (c *CLI) newPostsCreateCmd() *cobra.Command {
	var in domain.PostInput
	var status string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Status = domain.PostStatus(status)
			post, err := c.app.Features().Posts.Create.Run(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.printer(cmd).done(post, "created post "+post.ID)
		},
	}
	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "Post title")
	cmd.Flags().StringVar(&in.Content, "content", "", "Post body")
	cmd.Flags().StringVar(&in.Excerpt, "excerpt", "", "Short summary")
	cmd.Flags().StringVarP(&status, "status", "s", string(domain.PostDraft), "Initial status")
	cmd.Flags().StringVar(&in.CategoryID, "category", "", "Category ID")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "Tag name, repeatable")
	cmd.Flags().StringVar(&in.TemplateID, "template", "", "Start from this post template")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *CLI) newPostsFromTemplateCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "from-template <template-id>",
		Short: "Create a draft from a post template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := features.TemplateDraft{TemplateID: args[0], Title: title}
			post, err := c.app.Features().Posts.FromTemplate.Run(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return c.printer(cmd).done(post, "created draft "+post.ID+" from template "+args[0])
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Post title (defaults to the template name)")
	return cmd
}

func (c *CLI) newPostsUpdateCmd() *cobra.Command {
	var title, content, excerpt, category string
	var tags []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.PostPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("content") {
				patch.Content = &content
			}
			if flags.Changed("excerpt") {
				patch.Excerpt = &excerpt
			}
			if flags.Changed("category") {
				patch.CategoryID = &category
			}
			if flags.Changed("tag") {
				patch.Tags = tags
			}

			post, err := c.app.Features().Posts.Update.Run(cmd.Context(), features.Change[domain.PostPatch]{ID: args[0], Body: patch})
			if err != nil {
				return err
			}
			return c.printer(cmd).done(post, "updated post "+post.ID)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New body")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "New summary")
	cmd.Flags().StringVar(&category, "category", "", "New category ID")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags, repeatable")
	return cmd
}

func (c *CLI) newPostsPublishCmd() *cobra.Command {
	var unpublish bool
	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a post, or return it to draft with --unpublish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := c.app.Features().Posts.Publish.Run(cmd.Context(), features.Publication{ID: args[0], Publish: !unpublish})
			if err != nil {
				return err
			}
			return c.printer(cmd).done(post, "post "+post.ID+" is now "+string(post.Status))
		},
	}
	cmd.Flags().BoolVar(&unpublish, "unpublish", false, "Return the post to draft")
	return cmd
}

func (c *CLI) newPostsTrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trash <id>",
		Short: "Move a post to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Features().Posts.MoveToTrash.Run(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.printer(cmd).done(map[string]string{"trashed": args[0]}, "moved post "+args[0]+" to the trash")
		},
	}
}
