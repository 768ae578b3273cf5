package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pagecraft/docprep/internal/config"
	"github.com/pagecraft/docprep/internal/database"
	"github.com/pagecraft/docprep/internal/report"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `History lists the most recent preprocess and extract runs, newest first.

Use "docprep history show <run-id>" to print the result of a run. The
8-character ID shown in the listing is enough.

Examples:
  docprep history
  docprep history --limit 50
  docprep history show 0f8fad5b
  docprep history show --details 0f8fad5b`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	cmd.AddCommand(newHistoryShowCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the stored result of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}

	cmd.Flags().Bool("details", false, "Print run and page diagnostics instead of the result")
	cmd.Flags().Bool("pretty", false, "Indent the JSON result")

	return cmd
}

// historyDir returns the database directory from the environment, the
// configuration file or the default.
func historyDir(cmd *cobra.Command) (string, error) {
	cfg := config.NewConfig()

	var explicit string
	if f := cmd.Flags().Lookup("config"); f != nil {
		explicit = f.Value.String()
	}
	if path := config.FindConfigFile(explicit); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return "", err
		}
		file.Apply(cfg)
	}
	config.ApplyEnv(cfg, os.LookupEnv)
	return cfg.DBDir, nil
}

// openHistory opens an existing history database. ok is false when no run
// was ever recorded.
func openHistory(cmd *cobra.Command) (db *database.RunDB, ok bool, err error) {
	dir, err := historyDir(cmd)
	if err != nil {
		return nil, false, err
	}
	if _, err := os.Stat(filepath.Join(dir, database.FileName)); os.IsNotExist(err) {
		return nil, false, nil
	}
	db, err = database.Open(dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, false, err
	}
	return db, true, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, ok, err := openHistory(cmd)
	if err != nil {
		return err
	}

	var runs []database.Run
	if ok {
		defer db.Close()
		runs, err = db.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
	}

	_, err = report.NewHistoryWriter(cmd.OutOrStdout()).WriteRuns(runs)
	return err
}

// runHistoryShowCmd executes the history show command.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	details, err := cmd.Flags().GetBool("details")
	if err != nil {
		return err
	}
	pretty, err := cmd.Flags().GetBool("pretty")
	if err != nil {
		return err
	}

	db, ok, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return database.ErrRunNotFound
	}
	defer db.Close()

	run, err := db.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if details {
		_, err = report.NewHistoryWriter(cmd.OutOrStdout()).WriteRun(run)
		return err
	}

	var opts []report.JSONWriterOption
	if pretty {
		opts = append(opts, report.WithPrettyPrint())
	}
	_, err = report.NewJSONWriter(cmd.OutOrStdout(), opts...).WriteRaw(run.Result)
	return err
}
