package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"jobtrack/internal/client"
	"jobtrack/internal/format"
	"jobtrack/internal/model"
	"jobtrack/internal/store"

	"github.com/spf13/cobra"
)

const defaultUser = "me"

type App struct {
	Dir        string
	User       string
	Server     string
	PrettyJSON bool
	Format     string

	Logger *slog.Logger
}

type Option func(*App)

// WithLogger sets the logger shared by every command.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.Logger = l }
}

func NewRootCmd(opts ...Option) *cobra.Command {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		app.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cmd := &cobra.Command{
		Use:          "jobtrack",
		Short:        "Job application tracker (CLI + Kanban TUI + JSON API)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  jobtrack

  # Scriptable commands
  jobtrack apps create --company Acme --position "Backend Engineer" --salary-min 90000 --salary-max 120000
  jobtrack apps list --search acme --sort company:asc
  jobtrack board move app-abcd2345 --to Interview --index 0

  # Direct lookup (shortcut for: jobtrack apps show <app-id>)
  jobtrack app-abcd2345
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive board.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("JOBTRACK_DIR", ""), "Path to the local data dir (forces the local store even when a server is configured)")
	cmd.PersistentFlags().StringVar(&app.User, "user", envOr("JOBTRACK_USER", ""), "User id (default: currentUser from config, else \"me\")")
	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("JOBTRACK_SERVER", ""), "Base URL of a jobtrack server (default: server from config, else local store)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("JOBTRACK_FORMAT", "json"), "Output format (json|edn|table)")

	cmd.AddCommand(newAppsCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDoctorCmd(app))

	return cmd
}

// backend is what every command needs from either the local store or a server.
type backend interface {
	List(ctx context.Context, params model.ListParams) (model.ListResult, error)
	Get(ctx context.Context, id string) (model.Application, error)
	Create(ctx context.Context, p model.CreateParams) (model.Application, error)
	Update(ctx context.Context, id string, patch model.Patch) (model.Application, error)
	Delete(ctx context.Context, id string) error
	DeleteRejected(ctx context.Context) error
	Rebalance(ctx context.Context, status model.Status) (map[string]float64, error)
}

type resolved struct {
	User   string
	Server string
	Dir    string
	Sort   []model.SortField
}

// resolve applies flag/env, then config file, then defaults.
func resolve(app *App) (resolved, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return resolved{}, err
	}
	out := resolved{
		User:   strings.TrimSpace(app.User),
		Server: strings.TrimSpace(app.Server),
		Dir:    strings.TrimSpace(app.Dir),
	}
	if out.User == "" {
		out.User = strings.TrimSpace(cfg.CurrentUser)
	}
	if out.User == "" {
		out.User = defaultUser
	}
	if out.Server == "" && out.Dir == "" {
		out.Server = strings.TrimSpace(cfg.Server)
	}
	if out.Dir == "" {
		out.Dir = strings.TrimSpace(cfg.DataDir)
	}
	if out.Dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return resolved{}, err
		}
		out.Dir = d
	}
	if s := strings.TrimSpace(cfg.SortDefault); s != "" {
		sort, err := model.ParseSort(s)
		if err != nil {
			return resolved{}, fmt.Errorf("config sortDefault: %w", err)
		}
		out.Sort = sort
	}
	return out, nil
}

func openBackend(app *App) (backend, resolved, error) {
	r, err := resolve(app)
	if err != nil {
		return nil, r, err
	}
	if r.Server != "" {
		c, err := client.New(client.Config{BaseURL: r.Server, User: r.User, Logger: app.Logger})
		if err != nil {
			return nil, r, err
		}
		return c, r, nil
	}
	return store.Remote{Store: store.Store{Dir: r.Dir}, Owner: r.User}, r, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeData writes {"data": v}, or tbl when the table format is selected.
func writeData(cmd *cobra.Command, app *App, v any, tbl format.Tabular) error {
	if strings.EqualFold(strings.TrimSpace(app.Format), "table") && tbl != nil {
		return format.WriteTable(cmd.OutOrStdout(), tbl)
	}
	return writeOut(cmd, app, map[string]any{"data": v})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

var errMissingID = errors.New("missing application id")
