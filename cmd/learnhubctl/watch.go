// cmd/learnhubctl/watch.go
package main

import (
	"fmt"

	"github.com/dalemusser/learnhub/internal/app/system/notify"
	"github.com/spf13/cobra"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var addr, channel string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print course workflow notifications as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			n, err := notify.NewRedisNotifier(ctx, addr, channel, g.log)
			if err != nil {
				return err
			}
			defer n.Close()

			out := cmd.OutOrStdout()
			return n.Subscribe(ctx, func(e notify.Event) {
				line := fmt.Sprintf("%s  %-26s %s  %q  status=%s",
					e.At.Format("15:04:05"), e.Kind, e.CourseID, e.Title, e.ApprovalStatus)
				if e.RejectionReason != "" {
					line += fmt.Sprintf("  reason=%q", e.RejectionReason)
				}
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "redis", envOr("LEARNHUB_REDIS_ADDR", "localhost:6379"), "Redis address (env LEARNHUB_REDIS_ADDR)")
	cmd.Flags().StringVar(&channel, "channel", envOr("LEARNHUB_REDIS_CHANNEL", notify.DefaultChannel), "pub/sub channel")
	return cmd
}
