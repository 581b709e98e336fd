package cli

import (
	"errors"
	"strings"

	"jobtrack/internal/model"
	"jobtrack/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the global config",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the config file and the resolved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := resolve(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			mode := "local"
			if r.Server != "" {
				mode = r.Server
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"path":   path,
					"config": cfg,
					"resolved": map[string]any{
						"user":    r.User,
						"dir":     r.Dir,
						"backend": mode,
					},
				},
			})
		},
	})

	cmd.AddCommand(newConfigSetCmd(app, "set-user <user-id>", "Set the default user", func(cfg *store.GlobalConfig, v string) error {
		if v == "" {
			return errors.New("user id is empty")
		}
		cfg.CurrentUser = v
		return nil
	}))
	cmd.AddCommand(newConfigSetCmd(app, "set-server <url>", "Use a jobtrack server by default (empty string = local store)", func(cfg *store.GlobalConfig, v string) error {
		cfg.Server = v
		return nil
	}))
	cmd.AddCommand(newConfigSetCmd(app, "set-sort <field:dir,...>", "Set the default list sort (empty string = sortIndex,createdOn)", func(cfg *store.GlobalConfig, v string) error {
		if v != "" {
			if _, err := model.ParseSort(v); err != nil {
				return err
			}
		}
		cfg.SortDefault = v
		return nil
	}))

	return cmd
}

func newConfigSetCmd(app *App, use, short string, set func(cfg *store.GlobalConfig, v string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := set(cfg, strings.TrimSpace(args[0])); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	}
}
