package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/equal-orm/equal/internal/cli/ui"
)

func newDemoCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the user/post bootstrap scenario",
		Long: `Reset the demo tables, save a user with two posts, then load every
user together with its posts and print the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			users, err := s.repos.Run(cmd.Context(), s.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable(out, []string{"User", "Name", "Post", "Title"}, color.NoColor)
			for _, u := range users {
				if len(u.Posts) == 0 {
					table.AddRow(u.ID, u.Name)
					continue
				}
				for _, p := range u.Posts {
					table.AddRow(u.ID, u.Name, p.ID, p.Title)
				}
			}
			table.Render()

			ui.WriteSuccess(out, "Demo complete", color.NoColor)
			return nil
		},
	}
}
