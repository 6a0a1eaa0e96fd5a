package handlers

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"blogsmith/internal/core"
)

// NewPostsCmd creates the posts command for inspecting generated posts.
func NewPostsCmd() *cobra.Command {
	var status string
	var limit int
	var slug string

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List generated posts",
		Long: `Display generated posts, newest first. Filter by status or show a single
post's rendered content by slug.

Examples:
  blogsmith posts
  blogsmith posts --status scheduled
  blogsmith posts --slug ai-tools-for-productivity`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if slug != "" {
				p, err := st.GetPostBySlug(slug)
				if err != nil {
					return err
				}
				fmt.Printf("%s\n%s\nstatus: %s  template: %s  reading time: %d min\n\n",
					p.Title, p.MetaDescription, p.Status, p.TemplateType, p.ReadingTime())
				fmt.Println(p.Content)
				return nil
			}

			posts, err := st.ListPosts(core.PostStatus(status), limit)
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				fmt.Println("No posts found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tSTATUS\tTEMPLATE\tCREATED\tTITLE")
			for _, p := range posts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					p.Slug, p.Status, p.TemplateType,
					p.CreatedAt.Format("2006-01-02 15:04"), p.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status: draft, scheduled, published, archived")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum posts to list")
	cmd.Flags().StringVar(&slug, "slug", "", "show one post by slug")
	return cmd
}
