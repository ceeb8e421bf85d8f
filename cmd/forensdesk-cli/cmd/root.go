package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/application/commands"
	"forensdesk/internal/config"
	"forensdesk/internal/ports"
	"forensdesk/internal/wiring"
)

var (
	toolDir     string
	demoMode    string
	logLevel    string
	startOffset int64
	timeout     time.Duration
	cancel      context.CancelFunc = func() {}
	rt          *wiring.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "forensdesk-cli",
	Short: "Inspect disk and file-system images from the command line",
	Long: `forensdesk-cli examines forensic disk images with The Sleuth Kit.

Each invocation registers the image named on the command line, opens a
session on it and runs one operation. Every operation is recorded in the
chain-of-custody trail configured by FORENSDESK_AUDIT_DSN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		switch {
		case logLevel != "":
			cfg.Log.Level = logLevel
		case os.Getenv("FORENSDESK_LOG_LEVEL") == "":
			cfg.Log.Level = "warn"
		}
		cfg.Log.Format = "console"
		if cfg.Log.Output == "" || cfg.Log.Output == "stdout" {
			cfg.Log.Output = "stderr"
		}
		if toolDir != "" {
			cfg.SleuthKit.ToolDir = toolDir
		}

		lg, err := wiring.Logger(cfg)
		if err != nil {
			return err
		}

		var opener ports.CapabilityOpener
		if demoMode == "always" {
			opener = demo.Opener{}
		}
		if demoMode == "never" {
			cfg.Sessions.DemoFallback = false
		}

		ctx := cmd.Context()
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
			cmd.SetContext(ctx)
		}

		rt, err = wiring.Build(ctx, cfg, lg, opener)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		cancel()
		if rt == nil {
			return nil
		}
		return rt.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&toolDir, "tsk-dir", "", "directory holding the Sleuth Kit tools (default: PATH)")
	rootCmd.PersistentFlags().StringVar(&demoMode, "demo", "fallback", "demo backend use: fallback, always or never")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default warn)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "abort the operation after this long (e.g. 5m)")
}

// openImage registers path and opens a session, warning on stderr when
// the session is degraded
func openImage(ctx context.Context, path string) (string, error) {
	res, err := commands.OpenImage(ctx, rt.Workspace, path)
	if err != nil {
		return "", err
	}
	if res.Degraded {
		fmt.Fprintln(os.Stderr, "warning:", res.Warning)
	}
	return res.Token, nil
}

func addOffsetFlag(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&startOffset, "offset", "o", 0, "start sector of the partition's file system")
}
