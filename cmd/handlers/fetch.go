package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"blogsmith/internal/logger"
)

// NewFetchCmd creates the fetch command, which pulls trending topics into
// the store without generating anything.
func NewFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch trending topics and store them",
		Long: `Fetch the current trending search topics from the configured region and
store them as generation candidates. No content is generated.

Example:
  blogsmith fetch`,
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

			trends, err := newTrendClient(cfg)
			if err != nil {
				return err
			}

			topics, err := trends.FetchTrending(cmd.Context(), cfg.SerpAPI.Region, cfg.SerpAPI.WindowHours)
			if err != nil {
				return fmt.Errorf("failed to fetch trending topics: %w", err)
			}

			stored := 0
			for i := range topics {
				if _, err := st.CreateTopic(&topics[i]); err != nil {
					logger.Warn("topic store failed", "keyword", topics[i].Keyword, "error", err.Error())
					continue
				}
				stored++
			}

			fmt.Printf("Fetched %d topics, stored %d\n", len(topics), stored)
			return nil
		},
	}
}
