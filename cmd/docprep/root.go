package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pagecraft/docprep/internal/report"
)

// NewRootCmd creates the root command for docprep.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docprep",
		Short: "Document page preprocessing and OCR text extraction",
		Long: `docprep works on a directory of page images named page_1.png, page_2.png, ...

  preprocess  rotates pages upright, optionally unwarps them and writes
              size-capped JPEGs (page_<n>_pre.jpg) for vision model upload
  extract     reads the text of every page with OCR, keeping the visual
              rows of tables and receipts

Results are printed as JSON on stdout. Progress is logged on stderr.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .docprep.yaml in current or home directory)")

	cmd.AddCommand(NewPreprocessCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. A failure is printed as {"error": ...}
// on stderr and exits with status 1.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = report.NewJSONWriter(os.Stderr).WriteError(err) //nolint:errcheck // Nothing left to report to
		os.Exit(1)
	}
}
