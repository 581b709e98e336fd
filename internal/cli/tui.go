package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"jobtrack/internal/model"
	"jobtrack/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive Kanban board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	be, r, err := openBackend(app)
	if err != nil {
		return writeErr(cmd, err)
	}

	// The board owns the terminal, so logs only go to a file when asked for.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path := strings.TrimSpace(os.Getenv("JOBTRACK_TUI_LOG")); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := tui.Run(cmd.Context(), tui.Options{
		Remote: be,
		Params: model.ListParams{Sort: r.Sort},
		Logger: logger,
	}); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
