package main

import (
	"fmt"
	"strings"

	"github.com/Benjamin-Hogan/restload"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <batch-file>",
	Short: "Execute a batch of tasks from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := restload.LoadBatch(args[0])
		if err != nil {
			return err
		}

		if name, _ := cmd.Flags().GetString("config"); strings.TrimSpace(name) != "" {
			for _, t := range batch.Tasks {
				if strings.TrimSpace(t.ConfigName) == "" {
					t.ConfigName = name
				}
			}
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}

		eng := restload.NewEngine(reg)
		eng.StopOnError, _ = cmd.Flags().GetBool("stop-on-error")
		eng.Events = restload.FuncEvents{
			Progress: func(msg string) { fmt.Fprintln(cmd.OutOrStdout(), msg) },
		}

		rr, err := eng.Run(cmd.Context(), batch)
		if err != nil {
			return err
		}

		if err := restload.WriteTextReport(cmd.OutOrStdout(), rr); err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("save"); path != "" {
			if err := restload.SaveJSONReport(path, rr); err != nil {
				return err
			}
		}
		if path, _ := cmd.Flags().GetString("text-report"); path != "" {
			if err := restload.SaveTextReport(path, rr); err != nil {
				return err
			}
		}

		if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
			recordRun(cmd, rr)
		}

		if rr.Successful < rr.Total {
			return fmt.Errorf("%d of %d tasks failed", rr.Total-rr.Successful, rr.Total)
		}
		return nil
	},
}

// recordRun persists the run in history. Storage problems do not fail the
// command; the run itself already finished.
func recordRun(cmd *cobra.Command, rr *restload.RunResult) {
	logger := restload.GetLogger().WithComponent("cli")
	st, err := openStore()
	if err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	defer func() { _ = st.Close() }()

	label, _ := cmd.Flags().GetString("label")
	id, err := st.SaveRun(cmd.Context(), &restload.RunRecord{
		Label:      label,
		Total:      rr.Total,
		Successful: rr.Successful,
		Halted:     rr.State == restload.RunHalted,
		Results:    rr.Results,
	})
	if err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded as run %d\n", id)
}

func init() {
	f := runCmd.Flags()
	f.Bool("stop-on-error", false, "halt the batch after the first failed task")
	f.String("config", "", "config name for tasks that omit configName")
	f.String("save", "", "write the aggregate result JSON to a file")
	f.String("text-report", "", "write the human-readable report to a file")
	f.Bool("no-store", false, "do not record the run in history")
	f.String("label", "", "label stored with the history entry")
}
