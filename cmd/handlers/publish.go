package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewPublishCmd creates the publish command, which flips due scheduled
// posts to published without running a generation cycle.
func NewPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish scheduled posts that are due",
		Long: `Check for posts whose scheduled publication time has passed and publish
them. This is the same sweep the pipeline performs at the end of each run.

Example:
  blogsmith publish`,
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

			published, err := st.PublishDue(time.Now().UTC())
			if err != nil {
				return fmt.Errorf("failed to publish due posts: %w", err)
			}
			if len(published) == 0 {
				fmt.Println("No posts due for publication")
				return nil
			}
			for _, p := range published {
				fmt.Printf("Published: %s (%s)\n", p.Title, p.Slug)
			}
			return nil
		},
	}
}
