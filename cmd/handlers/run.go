package handlers

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"blogsmith/internal/config"
	"blogsmith/internal/pipeline"
)

// NewRunCmd creates the run command, which keeps the pipeline running on an
// interval until interrupted.
func NewRunCmd() *cobra.Command {
	var interval string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline continuously on an interval",
		Long: `Run generation cycles continuously. Each tick performs one full cycle and
then publishes any scheduled posts that have come due. Stop with Ctrl-C.

Examples:
  blogsmith run
  blogsmith run --interval 15m`,
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

			p, err := buildPipeline(cfg, st)
			if err != nil {
				return err
			}

			tick := config.Duration(cfg.Pipeline.Interval, 5*time.Minute)
			if interval != "" {
				tick = config.Duration(interval, tick)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Running every %s, Ctrl-C to stop\n", tick)
			err = pipeline.NewScheduler(p, tick).Start(ctx)
			if err == ctx.Err() {
				fmt.Println("Stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "", "override the run interval, e.g. 15m")
	return cmd
}
