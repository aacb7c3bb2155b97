// cmd/learnhubctl/root.go
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/dalemusser/learnhub/internal/app/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type globalOptions struct {
	baseURL string
	token   string
	timeout time.Duration
	verbose bool

	log *zap.Logger
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "learnhubctl",
		Short:         "Manage learnhub courses from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lvl := zapcore.WarnLevel
			if g.verbose {
				lvl = zapcore.DebugLevel
			}
			cfg := zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(lvl)
			cfg.OutputPaths = []string{"stderr"}
			l, err := cfg.Build()
			if err != nil {
				return err
			}
			g.log = l
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if g.log != nil {
				_ = g.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.baseURL, "url", envOr("LEARNHUB_URL", "http://localhost:8080"), "learnhub base URL (env LEARNHUB_URL)")
	pf.StringVar(&g.token, "token", os.Getenv("LEARNHUB_TOKEN"), "bearer token (env LEARNHUB_TOKEN)")
	pf.DurationVar(&g.timeout, "timeout", 60*time.Second, "per-request timeout")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newSubmitCmd(g),
		newGetCmd(g),
		newListCmd(g),
		newReviewCmd(g),
		newApproveCmd(g),
		newRejectCmd(g),
		newPublishCmd(g, true),
		newPublishCmd(g, false),
		newTokenCmd(),
		newWatchCmd(g),
	)
	return root
}

func (g *globalOptions) client() (*client.Client, error) {
	if g.baseURL == "" {
		return nil, errors.New("--url is required")
	}
	return client.New(client.Config{BaseURL: g.baseURL, Token: g.token, Timeout: g.timeout})
}

// commandContext returns cmd's context, or Background when the command was
// run without one (tests call Execute directly).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
