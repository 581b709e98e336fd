package cli

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jobtrack/internal/store"
	"jobtrack/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var defaultUser string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Long: strings.TrimSpace(`
Serve the job application API backed by the local store.

Requests identify their user with the X-User-Id header. Pass --default-user to
accept requests without it (single-user setups).
`),
		Example: strings.TrimSpace(`
jobtrack serve --addr 127.0.0.1:3340
jobtrack serve --addr :3340 --default-user me
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolve(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}

			st := store.Store{Dir: r.Dir}
			if err := st.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			srv, err := web.NewServer(web.ServerConfig{
				Addr:        listenAddr,
				Store:       st,
				DefaultUser: defaultUser,
				Logger:      app.Logger,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr": ln.Addr().String(),
					"url":  "http://" + ln.Addr().String() + "/",
					"dir":  r.Dir,
				},
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app.Logger.Info("serving", "addr", ln.Addr().String(), "dir", r.Dir)
			if err := srv.ListenAndServe(ctx, ln); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("JOBTRACK_ADDR", "127.0.0.1:3340"), "Listen address")
	cmd.Flags().StringVar(&defaultUser, "default-user", "", "User for requests without an X-User-Id header")

	return cmd
}
