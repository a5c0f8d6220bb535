// Command clustersummary summarizes documents by clustering sentence
// embeddings, scores summaries with BLEU and serves both over MCP or HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/localrivet/clustersummary"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "clustersummary",
	Short: "Extractive summarization with k-means over word vectors",
	Long: `clustersummary picks one representative sentence per cluster of
sentence embeddings and joins them in document order.

Configuration is read from .clustersummaryconfig (JSON) and CLUSTERSUMMARY_*
environment variables. A .env file in the working directory is loaded first.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newService loads the configuration named by --config and builds the pipeline.
func newService(withoutStore bool) (*clustersummary.Service, error) {
	return clustersummary.NewService(clustersummary.ServiceOptions{
		ConfigPath:   configPath,
		WithoutStore: withoutStore,
	})
}
