package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/creditlab/riskband/config"
	"github.com/creditlab/riskband/core/analysis"
	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/binning"
	"github.com/creditlab/riskband/core/dataset"
	"github.com/creditlab/riskband/core/model"
	"github.com/creditlab/riskband/infra/logger"
	"github.com/creditlab/riskband/pkg/export"
)

var (
	analyzeInput       string
	analyzeRecordsCSV  string
	analyzeRecordsJSON string
	analyzeSummaryCSV  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the banding pipeline once and print the report",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "CSV file (defaults to the configured dataset path)")
	analyzeCmd.Flags().StringVar(&analyzeRecordsCSV, "records-csv", "", "write banded records to this CSV file")
	analyzeCmd.Flags().StringVar(&analyzeRecordsJSON, "records-json", "", "write banded records to this JSON file")
	analyzeCmd.Flags().StringVar(&analyzeSummaryCSV, "summary-csv", "", "write band summaries to this CSV file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	input := cfg.Dataset.Path
	if analyzeInput != "" {
		input = analyzeInput
	}

	loader, err := dataset.NewLoader(cfg.Dataset)
	if err != nil {
		return fmt.Errorf("dataset loader: %w", err)
	}
	ds, err := loader.LoadFile(input)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	binner, err := binning.FromConfig(cfg.Binning)
	if err != nil {
		return fmt.Errorf("binner: %w", err)
	}
	st, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("run store: %w", err)
	}
	defer func() { _ = st.Close() }()

	engine, err := analysis.New(binner, cfg.Model, st, nil, logger.New("analyze"))
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	run, err := engine.Analyze(cmd.Context(), ds)
	if err != nil {
		return err
	}

	if err := writeExports(binner, ds, run); err != nil {
		return err
	}
	return renderReport(cmd.OutOrStdout(), run)
}

func writeExports(binner binning.Binner, ds dataset.Dataset, run model.AnalysisRun) error {
	var banded []model.BandedRecord
	if analyzeRecordsCSV != "" || analyzeRecordsJSON != "" {
		banded = binner.Apply(ds.Records)
	}
	if analyzeRecordsCSV != "" {
		if err := writeFile(analyzeRecordsCSV, func(w io.Writer) error {
			return export.WriteRecordsCSV(w, banded)
		}); err != nil {
			return err
		}
	}
	if analyzeRecordsJSON != "" {
		if err := writeFile(analyzeRecordsJSON, func(w io.Writer) error {
			return export.WriteRecordsJSON(w, banded)
		}); err != nil {
			return err
		}
	}
	if analyzeSummaryCSV != "" {
		if err := writeFile(analyzeSummaryCSV, func(w io.Writer) error {
			return export.WriteSummariesCSV(w, run.Bands)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func renderReport(w io.Writer, run model.AnalysisRun) error {
	fmt.Fprintf(w, "Analysis %s on dataset %s\n", run.ID, run.Summary.Name)
	fmt.Fprintf(w, "Rows %d (skipped %d, missing scores %d), default rate %.4f\n\n",
		run.Summary.Rows, run.Summary.Skipped, run.Summary.MissingScores, run.Summary.DefaultRate)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BAND\tCOUNT\tSHARE\tDEFAULTS\tRATE\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, b := range run.Bands {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			b.Band, b.Count, b.Share, b.Defaults, b.DefaultRate,
			b.ScoreMean, b.ScoreStdDev, b.ScoreMin, b.ScoreMax)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if run.ChiSquare.DF > 0 {
		fmt.Fprintf(w, "\nChi-square: stat=%.4f df=%d p=%.6f", run.ChiSquare.Statistic, run.ChiSquare.DF, run.ChiSquare.PValue)
		if run.ChiSquare.LowExpected {
			fmt.Fprintf(w, " (expected cell below 5, min %.2f)", run.ChiSquare.MinExpected)
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "\nChi-square unavailable")
	}

	if run.Logistic.Converged {
		fmt.Fprintf(w, "Logistic fit (n=%d, %d iterations):\n", run.Logistic.N, run.Logistic.Iterations)
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TERM\tESTIMATE\tSTDERR\tZ\tP")
		fmt.Fprintf(tw, "intercept\t%.4f\t%.4f\t%.3f\t%.6f\n",
			run.Logistic.Intercept.Estimate, run.Logistic.Intercept.StdErr,
			run.Logistic.Intercept.Z, run.Logistic.Intercept.PValue)
		fmt.Fprintf(tw, "score\t%.4f\t%.4f\t%.3f\t%.6f\n",
			run.Logistic.Slope.Estimate, run.Logistic.Slope.StdErr,
			run.Logistic.Slope.Z, run.Logistic.Slope.PValue)
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "log-lik=%.4f null=%.4f pseudo-R2=%.4f AIC=%.4f AUC=%.4f accuracy=%.4f@%.2f\n",
			run.Logistic.LogLik, run.Logistic.NullLogLik, run.Logistic.PseudoR2,
			run.Logistic.AIC, run.Logistic.AUC, run.Logistic.Accuracy, run.Logistic.Threshold)
	} else {
		fmt.Fprintln(w, "Logistic fit unavailable")
	}

	fmt.Fprintf(w, "\nVerdict: %s (alpha=%.2f)\n", run.Verdict.Status, run.Verdict.Alpha)
	for _, r := range run.Verdict.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	return nil
}
