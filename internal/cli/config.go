package cli

import "github.com/spf13/cobra"

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"settings":    app.cfg.AllSettings(),
				"projectFile": app.cfg.ProjectFile,
				"userFile":    app.cfg.UserFile,
			}})
		},
	}
}
