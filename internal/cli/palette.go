package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"formbuilder/internal/palette"
)

type paletteView struct {
	Templates []palette.Template `json:"templates"`
}

func (v paletteView) Text() string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "LABEL", "TYPE", "CONTAINER"})
	for _, t := range v.Templates {
		container := ""
		if t.CanHaveChildren {
			container = "yes"
		}
		tw.AppendRow(table.Row{t.ID, t.Label, string(t.Type), container})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignCenter},
	})
	tw.SetStyle(table.StyleLight)
	return tw.Render()
}

func newPaletteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Building-block templates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the templates that can be dragged into the outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, envelope{Data: paletteView{Templates: palette.Default().Templates()}})
		},
	})
	return cmd
}
