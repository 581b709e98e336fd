package cli

import (
	"errors"

	"jobtrack/internal/store"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local store and the board's order keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolve(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if r.Server != "" {
				return writeErr(cmd, errors.New("doctor: only the local store can be checked (pass --dir)"))
			}

			report, err := store.Store{Dir: r.Dir}.Doctor(cmd.Context(), r.User)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := writeOut(cmd, app, map[string]any{
				"data": report,
				"meta": map[string]any{
					"issues":    len(report.Issues),
					"hasErrors": report.HasErrors(),
				},
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
