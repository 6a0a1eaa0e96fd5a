package handlers

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewTopicsCmd creates the topics command for inspecting stored candidates.
func NewTopicsCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List recently stored topics",
		Long: `Display topics fetched inside the trailing window, with their processing
state and filter reasons.

Example:
  blogsmith topics --hours 24`,
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

			topics, err := st.RecentTopics(time.Duration(hours) * time.Hour)
			if err != nil {
				return fmt.Errorf("failed to list topics: %w", err)
			}
			if len(topics) == 0 {
				fmt.Println("No topics in the window")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKEYWORD\tRANK\tVOLUME\tSTATE\tFETCHED")
			for _, t := range topics {
				state := "pending"
				switch {
				case t.FilteredOut:
					state = "filtered: " + t.FilterReason
				case t.Processed:
					state = "processed"
				}
				if t.IsFallback {
					state += " (fallback)"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n",
					t.ID, t.Keyword, t.Rank, t.SearchVolume, state,
					t.Timestamp.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "trailing window in hours")
	return cmd
}
