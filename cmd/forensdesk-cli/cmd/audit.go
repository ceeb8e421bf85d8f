package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"forensdesk/internal/adapters/sqlite"
	"forensdesk/internal/application/commands"
	"forensdesk/internal/domain"
)

var auditCmd = &cobra.Command{
	Use:   "audit [evidence-id]",
	Short: "Print the chain-of-custody trail",
	Long: `Print the recorded custody events, oldest first. Evidence IDs restart
at E001 in every run, so filtering by evidence ID needs --run.

Examples:
  forensdesk-cli audit
  forensdesk-cli audit --run 3f2a9c1e-...
  forensdesk-cli audit --run 3f2a9c1e-... E001`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rt.Workspace.Audit == nil {
			return errors.New("custody trail is disabled")
		}
		id := ""
		if len(args) == 1 {
			id = args[0]
		}

		events, err := commands.NewAuditTrailCommand(rt.Workspace, id).InRun(auditRun).Execute(cmd.Context())
		if err != nil {
			return err
		}

		for _, e := range events {
			fmt.Printf("%6d  %s  %-8s %-5s %-20s %-10s %s\n",
				e.ID, domain.FormatTimestamp(e.Time), shortRun(e.Run), e.EvidenceID, e.Action, e.Session, e.Detail)
		}
		return nil
	},
}

var auditRun string

func shortRun(run string) string {
	if run == "" {
		return "-"
	}
	if len(run) > 8 {
		return run[:8]
	}
	return run
}

type chainVerifier interface {
	Verify(ctx context.Context) (*sqlite.VerifyStats, error)
}

var verifyCmd = &cobra.Command{
	Use:   "verify-audit",
	Short: "Recompute the digest chain of the custody trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, ok := rt.Workspace.Audit.(chainVerifier)
		if !ok {
			return errors.New("the configured custody store does not support verification")
		}

		stats, err := v.Verify(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Chain intact: %d events checked in %s\n", stats.EventsChecked, stats.Duration)
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditRun, "run", "", "Only print events recorded by this run")
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(verifyCmd)
}
