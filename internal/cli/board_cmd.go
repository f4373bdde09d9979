package cli

import (
	"fmt"

	"github.com/alexanderramin/issueflow/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBoardCmd(a *App) *cobra.Command {
	var static bool
	var width int

	cmd := &cobra.Command{
		Use:   "board PROJECT",
		Short: "Show the project board; interactive in a terminal",
		Long: "Show the project's issues by status column. In a terminal the board " +
			"is interactive: pick a card up with enter, move to a column and drop it " +
			"to transition the issue. Columns the card may not enter are drawn in red.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if static || !a.interactive() {
				view, err := a.Boards.Board(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBoard(view, width))
				return nil
			}

			// Fail fast on an unknown project before taking over the screen.
			if _, err := a.Projects.Resolve(ctx, args[0]); err != nil {
				return err
			}
			m := newBoardModel(ctx, serviceBoardSource{a: a}, args[0])
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&static, "static", false, "Print the board once instead of opening the interactive view")
	cmd.Flags().IntVar(&width, "width", formatter.DefaultColumnWidth, "Column width for the static board")

	return cmd
}
