package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/creditlab/riskband/config"
	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/model"
)

var (
	runsDataset string
	runsVerdict string
	runsLimit   int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Stored analysis runs",
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs, newest first",
	RunE:  runRunsLs,
}

func init() {
	runsLsCmd.Flags().StringVar(&runsDataset, "dataset", "", "filter by dataset name")
	runsLsCmd.Flags().StringVar(&runsVerdict, "verdict", "", "filter by verdict (validated, marginal, rejected)")
	runsLsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs")
	runsCmd.AddCommand(runsLsCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("run store: %w", err)
	}
	defer func() { _ = st.Close() }()

	q := store.RunQuery{Dataset: runsDataset, Limit: runsLimit}
	if runsVerdict != "" {
		switch model.VerdictStatus(runsVerdict) {
		case model.VerdictValidated, model.VerdictMarginal, model.VerdictRejected:
			q.Verdict = model.VerdictStatus(runsVerdict)
		default:
			return fmt.Errorf("unknown verdict %s", runsVerdict)
		}
	}
	runs, err := st.Query(cmd.Context(), q)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDATASET\tROWS\tVERDICT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Summary.Name, r.Summary.Rows, r.Verdict.Status)
	}
	return tw.Flush()
}
