package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"blogsmith/internal/pipeline"
)

// NewGenerateCmd creates the generate command, which runs one full pipeline
// cycle: fetch, select, generate, render, save, publish due. With --keyword
// the fetch and selection stages are skipped and the post is generated for
// the given keyword directly.
func NewGenerateCmd() *cobra.Command {
	var publishNow bool
	var keyword string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation cycle",
		Long: `Run a single end-to-end generation cycle: fetch trending topics, pick the
best candidate, generate an article, and schedule it for publication.

With --keyword, skip trend discovery and generate a post for that keyword.

Examples:
  blogsmith generate
  blogsmith generate --publish-now
  blogsmith generate --keyword "how to brew espresso at home" --publish-now`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if publishNow {
				cfg.Pipeline.PublishInstantly = true
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := buildPipeline(cfg, st)
			if err != nil {
				return err
			}

			var result *pipeline.RunResult
			if keyword != "" {
				result, err = p.GenerateFor(cmd.Context(), keyword)
			} else {
				result, err = p.Run(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("pipeline run failed: %w", err)
			}
			if result.Skipped {
				fmt.Printf("Run %s skipped: %s\n", result.ProcessID, result.SkipNote)
				return nil
			}

			fmt.Printf("Post created: %s (%s)\n", result.Post.Title, result.Post.Slug)
			fmt.Printf("Status: %s", result.Post.Status)
			if result.Post.ScheduledAt != nil {
				fmt.Printf(" at %s", result.Post.ScheduledAt.Format("2006-01-02 15:04:05"))
			}
			fmt.Println()
			if result.Degraded {
				fmt.Println("Note: content generation degraded, placeholder sections were used")
			}
			if len(result.Published) > 0 {
				fmt.Printf("Published %d scheduled post(s)\n", len(result.Published))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&publishNow, "publish-now", false, "publish immediately instead of scheduling")
	cmd.Flags().StringVar(&keyword, "keyword", "", "generate a post for this keyword instead of a trending topic")
	return cmd
}
