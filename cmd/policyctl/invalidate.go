package main

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/upb/rental-portal/internal/signals"
)

func newInvalidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "End a user's open portal views on every gateway",
		Long: `Publish a session invalidation. Every gateway subscribed to the channel
re-evaluates the subject's open views as anonymous and redirects them.

Examples:
  policyctl invalidate --subject 3f1c... --reason logout
  REDIS_URL=redis://cache:6379/0 policyctl invalidate --subject 3f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			redisURL, _ := cmd.Flags().GetString("redis-url")
			channel, _ := cmd.Flags().GetString("channel")
			subject, _ := cmd.Flags().GetString("subject")
			reason, _ := cmd.Flags().GetString("reason")

			if redisURL == "" {
				redisURL = os.Getenv("REDIS_URL")
			}
			if redisURL == "" {
				return fmt.Errorf("--redis-url or REDIS_URL is required")
			}

			opts, err := redis.ParseURL(redisURL)
			if err != nil {
				return fmt.Errorf("invalid redis url: %w", err)
			}
			client := redis.NewClient(opts)
			defer client.Close()

			ctx := cmd.Context()
			n, err := signals.Publish(ctx, client, channel, signals.Invalidation{Subject: subject, Reason: reason})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "invalidation for %s delivered to %d gateway(s) at %s\n",
				subject, n, time.Now().UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().String("redis-url", "", "Redis URL (default: $REDIS_URL)")
	cmd.Flags().String("channel", signals.DefaultChannel, "invalidation channel")
	cmd.Flags().String("subject", "", "subject whose session ended")
	cmd.Flags().String("reason", signals.ReasonLogout, "invalidation reason: logout, expired or other")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
