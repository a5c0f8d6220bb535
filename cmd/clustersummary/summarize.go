package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/localrivet/clustersummary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text]",
	Short: "Summarize one document",
	Long: `Summarize a document given as arguments, with --file, or on stdin.

Examples:
  clustersummary summarize "First sentence. Second sentence. Third one."
  clustersummary summarize --file article.txt --details`,
	RunE: runSummarize,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Summarize and score every row of a CSV dataset",
	Long: `Summarize the Text column of a CSV dataset and, where a Summary column
is present, score each result against it with BLEU. Results are written as
CSV and stored in the result store for later search.

Example:
  clustersummary batch --data news_summary.csv --limit 10 --out results.csv`,
	RunE: runBatch,
}

func init() {
	summarizeCmd.Flags().StringP("file", "f", "", "read the document from a file")
	summarizeCmd.Flags().Bool("details", false, "print the selected sentences and diagnostics")
	summarizeCmd.Flags().Bool("baseline", false, "also print the lead baseline and its BLEU against the summary")
	rootCmd.AddCommand(summarizeCmd)

	batchCmd.Flags().StringP("data", "d", "", "CSV dataset with Text and optional Summary columns")
	batchCmd.Flags().IntP("limit", "n", 0, "maximum number of rows to process (0 = all)")
	batchCmd.Flags().StringP("out", "o", "", "write the result CSV here instead of stdout")
	_ = batchCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(batchCmd)
}

func readDocument(cmd *cobra.Command, args []string) (string, error) {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return "", fmt.Errorf("getting file flag: %w", err)
	}
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading document: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
}

func runSummarize(cmd *cobra.Command, args []string) error {
	text, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	details, err := cmd.Flags().GetBool("details")
	if err != nil {
		return fmt.Errorf("getting details flag: %w", err)
	}
	baseline, err := cmd.Flags().GetBool("baseline")
	if err != nil {
		return fmt.Errorf("getting baseline flag: %w", err)
	}

	svc, err := newService(true)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Summarize(cmd.Context(), text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Summary)
	if details {
		d := res.Diagnostics
		fmt.Fprintf(out, "\nk=%d sentences=%d kept=%d dropped=%d oov=%d iterations=%d\n",
			res.K, d.Sentences, d.Kept, d.Dropped, len(d.OOVSentences), d.Iterations)
		for _, sel := range res.Selections {
			fmt.Fprintf(out, "  [%d] cluster %d: %s\n", sel.Index, sel.Cluster, sel.Text)
		}
	}
	if baseline {
		lead, err := svc.Baseline(text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nbaseline (BLEU %.4f): %s\n", svc.Score(res.Summary, lead), lead)
	}
	return nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	data, err := cmd.Flags().GetString("data")
	if err != nil {
		return fmt.Errorf("getting data flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("getting out flag: %w", err)
	}

	svc, err := newService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.RunBatch(cmd.Context(), data, limit)
	if report == nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, ferr := os.Create(outPath)
		if ferr != nil {
			return fmt.Errorf("creating output: %w", ferr)
		}
		defer f.Close()
		out = f
	}
	if werr := clustersummary.WriteReport(out, report); werr != nil {
		return werr
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d succeeded, %d failed, %d scored, mean BLEU %.4f in %v\n",
		report.RunID, report.Succeeded, report.Failed, report.Scored, report.MeanScore, report.Elapsed)
	return err
}
