package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/incident-cli/internal/model"
	"github.com/sells-group/incident-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect run history",
	Long:  "Commands for listing and viewing completed process runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := requireStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}

		out := cmd.OutOrStdout()
		formatRunsList(out, runs, isTerminal(out))
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := requireStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runsListCmd.Flags().Int("limit", store.DefaultListLimit, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func requireStore(cmd *cobra.Command) (store.RunStore, error) {
	st, err := initStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("runs: run history is disabled (store.driver=none)")
	}
	return st, nil
}

// formatRunsList writes a table of runs to out.
func formatRunsList(out io.Writer, runs []model.Run, fancy bool) {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		target := r.Target
		if r.DryRun {
			target += " (dry run)"
		}
		rows = append(rows, []string{
			truncateID(r.ID),
			r.Source,
			target,
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.Found),
			strconv.Itoa(r.NotFound),
			strconv.Itoa(r.FailureCount() + r.UnknownState),
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Duration().Round(time.Second).String(),
		})
	}

	_, _ = fmt.Fprintln(out, renderTable(
		[]string{"ID", "SOURCE", "TARGET", "ROWS", "FOUND", "NOT FOUND", "FAILED", "STARTED", "DURATION"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignRight},
		fancy,
	))
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
