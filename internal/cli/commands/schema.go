package commands

import (
	"errors"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/equal-orm/equal/internal/cli/ui"
)

func newSchemaCommand(opts *options) *cobra.Command {
	var reset, yes bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the tables of the registered entities",
		Long: `Create a table for every registered entity if it does not exist yet.

With --reset every table is dropped first, discarding its rows. The reset
asks for confirmation unless --yes is given.`,
		Example: `  # Create missing tables
  equal schema

  # Drop and recreate every table
  equal schema --reset --yes --debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset && !yes {
				confirmed := false
				prompt := &survey.Confirm{
					Message: "Drop and recreate every table? All rows will be lost.",
					Default: false,
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					return errors.New("schema reset cancelled")
				}
			}

			s, err := opts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.repos.EnsureSchema(cmd.Context(), reset); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable(out, []string{"Entity", "Table", "Columns"}, color.NoColor)
			for _, e := range s.registry.Entities() {
				table.AddRow(e.Name, e.TableName, strconv.Itoa(len(s.registry.LookupColumns(e.Type))))
			}
			table.Render()

			ui.WriteSuccess(out, "Schema ready", color.NoColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop tables before creating them")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the reset confirmation prompt")
	return cmd
}
