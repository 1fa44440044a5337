package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"numbersapi/internal/app"
	"numbersapi/internal/config"
	"numbersapi/internal/services"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Assign serials to records stored without one",
	Long: `Assign serials to legacy records in saved_at order, starting after the
highest existing serial or counter value, then raise the counter to match.
Stop all API instances first: the scan and update are not coordinated with
live allocation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		sequence, _ := cmd.Flags().GetString("sequence")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		report, err := app.Backfill(ctx, cfg, sequence, dryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.Assigned == 0 {
			fmt.Fprintln(out, "No records need backfilling.")
			return nil
		}
		verb := "Assigned"
		if dryRun {
			verb = "Would assign"
		}
		fmt.Fprintf(out, "%s %d serials (%d..%d); counter %q = %d\n",
			verb, report.Assigned, report.FirstSerial, report.LastSerial, sequence, report.CounterValue)
		return nil
	},
}

func init() {
	backfillCmd.Flags().Bool("dry-run", false, "print the plan without writing")
	backfillCmd.Flags().String("sequence", services.NumbersSequence, "counter name to resynchronize")
}
