// Command scrape is a local CLI front end for the scrape engine: it
// loads configuration, wires the backend/store/extraction stack, and
// runs a single scrape to completion against stdout.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
	"github.com/quantmind-br/scrape-go/internal/utils"
	"github.com/quantmind-br/scrape-go/pkg/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var verbose bool
	logHolder := &loggerHolder{}

	root := &cobra.Command{
		Use:     "scrape",
		Short:   "Fetch a URL through the scrape engine's backend strategy pipeline",
		Version: version.Short(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logHolder.log = utils.NewVerboseLogger()
			} else {
				logHolder.log = utils.NewDefaultLogger()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(buildScrapeCmd(cfg, logHolder))
	root.AddCommand(buildDoctorCmd(cfg))
	root.AddCommand(buildConfigCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Full())
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loggerHolder defers logger construction until after cobra parses the
// --verbose flag (PersistentPreRun runs before any subcommand's RunE).
type loggerHolder struct {
	log *utils.Logger
}

// buildScrapeCmd wires the `scrape <url>` subcommand. The
// --extract-query flag is registered only when the configured LLM
// provider is usable, so the CLI never advertises an option the engine
// cannot honor.
func buildScrapeCmd(cfg *config.Config, logHolder *loggerHolder) *cobra.Command {
	req := domain.ScrapeRequest{}
	var extractQuery string

	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a single URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			req.ExtractQuery = extractQuery

			eng, err := buildEngine(cfg, logHolder.log)
			if err != nil {
				return err
			}
			defer eng.Close()

			result, err := eng.orchestrator.Scrape(cmd.Context(), req)
			if err != nil {
				return formatScrapeError(err, req)
			}

			fmt.Println(result.InlineText)
			if result.HasResource {
				fmt.Fprintf(cmd.OutOrStdout(), "\nresource: %s\n", result.ResourceHandle)
			}
			return nil
		},
	}

	cmd.Flags().UintVar(&req.TimeoutMS, "timeout-ms", 60000, "per-backend wall-clock ceiling")
	cmd.Flags().UintVar(&req.MaxChars, "max-chars", 100000, "inline window size")
	cmd.Flags().UintVar(&req.StartIndex, "start-index", 0, "inline window start offset")
	cmd.Flags().BoolVar(&req.SaveResult, "save-result", true, "persist to the resource store on a cache miss")
	cmd.Flags().BoolVar(&req.ForceRescrape, "force-rescrape", false, "bypass the cache read")

	if cfg.ExtractionEnabled() {
		cmd.Flags().StringVar(&extractQuery, "extract-query", "", "natural-language extraction query")
	}

	return cmd
}

// formatScrapeError wraps an AllBackendsFailed error with a stable
// "scrape failed" prefix naming the URL that was requested; every other
// tool-level error (InvalidArgument, a fatal StoreError, a parse failure)
// is returned as-is.
func formatScrapeError(err error, req domain.ScrapeRequest) error {
	var allFailed *domain.AllBackendsFailed
	if errors.As(err, &allFailed) {
		return fmt.Errorf("scrape failed for %s: %w", req.URL, allFailed)
	}
	return err
}
