package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"member-tracker-go/internal/domain/notification"
)

var (
	sendKind string

	reportsCmd = &cobra.Command{
		Use:   "reports",
		Short: "Report delivery",
	}

	reportsSendCmd = &cobra.Command{
		Use:   "send",
		Short: "Build and email one round of reports for every organization",
		Long: "Runs one delivery pass on demand. Organizations that already " +
			"received the report for the period are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, ok := notification.ParseKind(sendKind)
			if !ok || kind == notification.KindMembershipAchieved {
				return fmt.Errorf("unknown kind %q: want semester, annual or status", sendKind)
			}

			application, err := openApp()
			if err != nil {
				return err
			}
			defer application.Close()

			summary, err := application.Deliverer().RunPass(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d organizations, %d failed\n", kind, summary.Events, summary.Failed)
			return nil
		},
	}
)

func init() {
	reportsSendCmd.Flags().StringVar(&sendKind, "kind", "semester", "semester, annual or status")
	reportsCmd.AddCommand(reportsSendCmd)
}
