package cli

import (
	"fmt"
	"strconv"
	"strings"

	"jobtrack/internal/board"
	"jobtrack/internal/format"
	"jobtrack/internal/model"
	"jobtrack/internal/mutate"
	"jobtrack/internal/statusutil"

	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Kanban board commands",
	}

	cmd.AddCommand(newBoardShowCmd(app))
	cmd.AddCommand(newBoardMoveCmd(app))
	cmd.AddCommand(newBoardRebalanceCmd(app))

	return cmd
}

func boardTable(b board.Board) format.Rows {
	rows := format.Rows{Headers: []string{"STATUS", "#", "ID", "COMPANY", "POSITION", "ORDER"}}
	for _, col := range b.Columns {
		for i, a := range col.Items {
			rows.Data = append(rows.Data, []string{
				col.Title,
				strconv.Itoa(i),
				a.ID,
				a.Company,
				a.Position,
				strconv.FormatFloat(a.SortIndex, 'f', -1, 64),
			})
		}
	}
	return rows
}

func newBoardShowCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the board grouped by status column",
		RunE: func(cmd *cobra.Command, args []string) error {
			be, r, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := be.List(cmd.Context(), model.ListParams{Search: search, Sort: r.Sort})
			if err != nil {
				return writeErr(cmd, err)
			}
			b := board.Build(res.Results)
			return writeData(cmd, app, b, boardTable(b))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only show matching applications")

	return cmd
}

type moveResult struct {
	ID         string         `json:"id"`
	From       board.Location `json:"from"`
	To         board.Location `json:"to"`
	Status     model.Status   `json:"status"`
	SortIndex  float64        `json:"sortIndex"`
	Generation uint64         `json:"generation"`
}

func newBoardMoveCmd(app *App) *cobra.Command {
	var to string
	var index int

	cmd := &cobra.Command{
		Use:   "move <application-id>",
		Short: "Move a card to a column position, as a drag and drop would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errMissingID)
			}
			dest, err := statusutil.Normalize(to)
			if err != nil {
				return writeErr(cmd, err)
			}
			be, r, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var moveErr error
			coord := board.NewCoordinator(nil, be, board.ReporterFunc(func(err error) { moveErr = err }), app.Logger)
			coord.SetParams(model.ListParams{Sort: r.Sort})
			if err := coord.Refresh(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			src, srcIdx, ok := coord.Board().Locate(id)
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "application", ID: id})
			}

			drop := board.DropResult{
				ItemID:      id,
				Source:      board.Location{ColumnID: src, Index: srcIdx},
				Destination: &board.Location{ColumnID: dest, Index: index},
			}
			ch, ok := coord.Drop(cmd.Context(), drop)
			if !ok {
				return writeErr(cmd, fmt.Errorf("cannot move %s", id))
			}
			out := <-ch
			if out.Err != nil {
				if moveErr == nil {
					moveErr = out.Err
				}
				return writeErr(cmd, moveErr)
			}

			st, idx, _ := coord.Board().Locate(id)
			cur, _ := coord.Board().Column(st)
			res := moveResult{
				ID:         id,
				From:       drop.Source,
				To:         board.Location{ColumnID: st, Index: idx},
				Status:     st,
				SortIndex:  cur.Items[idx].SortIndex,
				Generation: out.Generation,
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination column (Applied|Interview|Offer|Rejected)")
	cmd.Flags().IntVar(&index, "index", 0, "Destination position within the column (0 = top; past the end = bottom)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newBoardRebalanceCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Respace the order keys of a column",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.Normalize(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			be, _, err := openBackend(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			keys, err := be.Rebalance(cmd.Context(), st)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"status": st, "keys": keys}})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Column to rebalance")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}
