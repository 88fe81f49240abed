package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"formbuilder/internal/docs"
	"formbuilder/internal/publish"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var title string
	var includeIDs bool
	var overwrite bool
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export the outline as Markdown (derived, not canonical)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.loadForest()
			if err != nil {
				return writeErr(cmd, err)
			}

			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				md := publish.RenderFormMarkdown(forest, publish.RenderOptions{Title: title, IncludeIDs: includeIDs})
				if render {
					style := docs.StyleDark
					if app.cfg.NoColor() {
						style = docs.StylePlain
					}
					md = docs.Render(md, width, style)
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}

			res, err := publish.WriteForm(forest, toDir, publish.WriteOptions{
				Title:      title,
				IncludeIDs: includeIDs,
				Overwrite:  overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory (prints to stdout when empty)")
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().BoolVar(&includeIDs, "ids", false, "Include block ids")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")
	cmd.Flags().BoolVar(&render, "render", false, "Render for the terminal when printing")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}
