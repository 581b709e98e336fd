package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"jobtrack/internal/format"
	"jobtrack/internal/model"
	"jobtrack/internal/mutate"
	"jobtrack/internal/statusutil"
	"jobtrack/internal/store"
	"jobtrack/internal/tui"

	"github.com/spf13/cobra"
)

func newAppsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"applications"},
		Short:   "Job application commands",
	}

	cmd.AddCommand(newAppsCreateCmd(app))
	cmd.AddCommand(newAppsListCmd(app))
	cmd.AddCommand(newAppsShowCmd(app))
	cmd.AddCommand(newAppsUpdateCmd(app))
	cmd.AddCommand(newAppsDeleteCmd(app))
	cmd.AddCommand(newAppsArchiveCmd(app))
	cmd.AddCommand(newAppsDeleteRejectedCmd(app))

	return cmd
}

func appsTable(apps []model.Application) format.Rows {
	rows := format.Rows{Headers: []string{"ID", "COMPANY", "POSITION", "STATUS", "SALARY", "ORDER"}}
	for _, a := range apps {
		rows.Data = append(rows.Data, []string{
			a.ID,
			a.Company,
			a.Position,
			statusutil.Label(a.Status),
			salaryRange(a),
			strconv.FormatFloat(a.SortIndex, 'f', -1, 64),
		})
	}
	return rows
}

func salaryRange(a model.Application) string {
	return strconv.FormatFloat(a.SalaryMin, 'f', -1, 64) + "-" + strconv.FormatFloat(a.SalaryMax, 'f', -1, 64)
}

func newAppsCreateCmd(app *App) *cobra.Command {
	var company string
	var position string
	var salaryMin float64
	var salaryMax float64
	var status string
	var notes string
	var sortIndex float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job application",
		RunE: func(cmd *cobra.Command, args []string) error {
			be, _, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := model.CreateParams{
				Company:   company,
				Position:  position,
				SalaryMin: salaryMin,
				SalaryMax: salaryMax,
				Notes:     notes,
			}
			if strings.TrimSpace(status) != "" {
				st, err := statusutil.Normalize(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Status = st
			}
			if cmd.Flags().Changed("sort-index") {
				v := sortIndex
				p.SortIndex = &v
			}
			a, err := be.Create(cmd.Context(), p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, a, appsTable([]model.Application{a}))
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company name (3-100 chars)")
	cmd.Flags().StringVar(&position, "position", "", "Position title (2-100 chars)")
	cmd.Flags().Float64Var(&salaryMin, "salary-min", 0, "Lower bound of the salary range")
	cmd.Flags().Float64Var(&salaryMax, "salary-max", 0, "Upper bound of the salary range")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (Applied|Interview|Offer|Rejected; default Applied)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes (markdown)")
	cmd.Flags().Float64Var(&sortIndex, "sort-index", 0, "Explicit order key (default: after the last card of the column)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("position")

	return cmd
}

func newAppsListCmd(app *App) *cobra.Command {
	var search string
	var sortSpec string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List job applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			be, r, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			params := model.ListParams{Search: search, Sort: r.Sort}
			if cmd.Flags().Changed("sort") {
				sort, err := model.ParseSort(sortSpec)
				if err != nil {
					return writeErr(cmd, err)
				}
				params.Sort = sort
			}
			res, err := be.List(cmd.Context(), params)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, res, appsTable(res.Results))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive substring match on company, position or notes")
	cmd.Flags().StringVar(&sortSpec, "sort", "", "Comma-separated field:dir pairs (e.g. company:asc,createdOn:desc)")

	return cmd
}

func newAppsShowCmd(app *App) *cobra.Command {
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "show <application-id>",
		Short: "Show a job application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errMissingID)
			}
			be, _, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := be.Get(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if render {
				_, err := fmt.Fprint(cmd.OutOrStdout(), tui.RenderApplication(a, width))
				return err
			}
			return writeData(cmd, app, a, nil)
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render as styled markdown instead of structured output")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")

	return cmd
}

func newAppsUpdateCmd(app *App) *cobra.Command {
	var company string
	var position string
	var salaryMin float64
	var salaryMax float64
	var status string
	var notes string
	var sortIndex float64

	cmd := &cobra.Command{
		Use:   "update <application-id>",
		Short: "Update fields of a job application",
		Long: strings.TrimSpace(`
Only the flags you pass are changed.

Passing --sort-index moves the card: it must be combined with --status and no
other field.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errMissingID)
			}
			flags := cmd.Flags()
			var up model.UpdateParams
			if flags.Changed("company") {
				up.Company = &company
			}
			if flags.Changed("position") {
				up.Position = &position
			}
			if flags.Changed("salary-min") {
				up.SalaryMin = &salaryMin
			}
			if flags.Changed("salary-max") {
				up.SalaryMax = &salaryMax
			}
			if flags.Changed("status") {
				st := model.Status(status)
				up.Status = &st
			}
			if flags.Changed("notes") {
				up.Notes = &notes
			}
			if flags.Changed("sort-index") {
				up.SortIndex = &sortIndex
			}
			patch, err := mutate.DecodePatch(up)
			if err != nil {
				return writeErr(cmd, err)
			}

			be, _, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := be.Update(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, a, appsTable([]model.Application{a}))
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company name")
	cmd.Flags().StringVar(&position, "position", "", "Position title")
	cmd.Flags().Float64Var(&salaryMin, "salary-min", 0, "Lower bound of the salary range")
	cmd.Flags().Float64Var(&salaryMax, "salary-max", 0, "Upper bound of the salary range")
	cmd.Flags().StringVar(&status, "status", "", "Status (Applied|Interview|Offer|Rejected)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes (markdown)")
	cmd.Flags().Float64Var(&sortIndex, "sort-index", 0, "Order key within the status column (requires --status)")

	return cmd
}

func newAppsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <application-id>",
		Short: "Delete a job application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errMissingID)
			}
			be, _, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := be.Delete(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
	return cmd
}

// Archived rows stay in the database but no read returns them.
func newAppsArchiveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <application-id>",
		Short: "Hide a job application without removing it from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errMissingID)
			}
			r, err := resolve(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if r.Server != "" {
				return writeErr(cmd, errors.New("archive: only the local store keeps archived rows (pass --dir)"))
			}
			if err := (store.Store{Dir: r.Dir}).SoftDeleteApplication(cmd.Context(), r.User, id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "archived": true}})
		},
	}
	return cmd
}

func newAppsDeleteRejectedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-rejected",
		Short: "Delete every application in the Rejected column",
		RunE: func(cmd *cobra.Command, args []string) error {
			be, _, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := be.DeleteRejected(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"status": model.StatusRejected, "deleted": true}})
		},
	}
	return cmd
}
