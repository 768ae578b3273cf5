package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagecraft/docprep/internal/config"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration file",
		Long: `Init writes a .docprep.yaml that lists every setting with its default.
All settings start commented out, so the file changes nothing until edited.

Examples:
  docprep init
  docprep init -o ~/.config/docprep/config.yaml
  docprep init -f          # replace an existing file
  docprep init --stdout > my.yaml`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Configuration file to write")
	cmd.Flags().BoolP("force", "f", false, "Replace an existing file")
	cmd.Flags().Bool("stdout", false, "Print the template instead of writing a file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if toStdout, _ := flags.GetBool("stdout"); toStdout { //nolint:errcheck // Flag is registered above
		_, err := cmd.OutOrStdout().Write(config.Template())
		return err
	}

	path, _ := flags.GetString("output") //nolint:errcheck // Flag is registered above
	force, _ := flags.GetBool("force")   //nolint:errcheck // Flag is registered above

	err := config.WriteTemplate(path, force)
	if errors.Is(err, config.ErrConfigExists) {
		return fmt.Errorf("%w (use -f to overwrite)", err)
	}
	if err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", path)
	return nil
}
