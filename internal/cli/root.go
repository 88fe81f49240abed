package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"formbuilder/internal/config"
	"formbuilder/internal/debug"
	"formbuilder/internal/dnd"
	"formbuilder/internal/format"
	"formbuilder/internal/ids"
	"formbuilder/internal/model"
	"formbuilder/internal/palette"
	"formbuilder/internal/store"
	"formbuilder/internal/tui"
)

type App struct {
	Seed       string
	ConfigPath string
	Format     string
	Pretty     bool
	Debug      bool
	NoColor    bool

	cfg *config.Config
	log *debug.Log
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "formbuilder",
		Short:        "Drag-and-drop form outline builder (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive builder
  formbuilder

  # Show the outline a session would start from
  formbuilder tree show --format text

  # Where would blk-3 land if dropped after blk-5, dragged one step left?
  formbuilder tree project --active blk-3 --over blk-5 --offset -50

  # Replay a recorded gesture
  formbuilder gesture replay gesture.jsonl
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	cmd.PersistentFlags().StringVar(&app.Seed, "seed", envOr("FB_SEED", ""), "Outline JSON file to start from (default: .formbuilder/seed.json or the built-in outline)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("FB_CONFIG", ""), "Project config file (default: nearest .formbuilder/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|edn|text)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Write a debug log to ~/.formbuilder/debug.log")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colors in the TUI")

	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newPaletteCmd(app))
	cmd.AddCommand(newGestureCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newPublishCmd(app))

	return cmd
}

// init resolves configuration once per invocation. Flags only override config values
// when they were set explicitly.
func (app *App) init(cmd *cobra.Command) error {
	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("seed") || app.Seed != "" {
		overrides[config.KeySeedPath] = app.Seed
	}
	if flags.Changed("format") {
		overrides[config.KeyOutputFormat] = app.Format
	}
	if flags.Changed("pretty") {
		overrides[config.KeyOutputPretty] = app.Pretty
	}
	if flags.Changed("debug") {
		overrides[config.KeyDebug] = app.Debug
	}
	if flags.Changed("no-color") {
		overrides[config.KeyNoColor] = app.NoColor
	}

	opts := []config.Option{config.WithOverrides(overrides)}
	if app.ConfigPath != "" {
		opts = append(opts, config.WithProjectConfig(app.ConfigPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	app.Format = cfg.OutputFormat()
	app.Pretty = cfg.Pretty()

	l, err := debug.Open(cfg.Debug(), "")
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = l
	app.logger().Debug("command start", "path", cmd.CommandPath())
	return nil
}

func (app *App) close() error {
	if app.log == nil {
		return nil
	}
	return app.log.Close()
}

func (app *App) logger() *slog.Logger {
	if app.log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return app.log.Logger
}

func (app *App) idGenerator() (ids.Generator, error) {
	return ids.New(app.cfg.IDStyle(), app.cfg.IDPrefix())
}

// seedPath resolves --seed / seed.path first, then the discovered .formbuilder/seed.json.
func (app *App) seedPath() string {
	if p := app.cfg.SeedPath(); p != "" {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	dir, ok := store.DiscoverDir(wd)
	if !ok {
		return ""
	}
	return store.Store{Dir: dir}.ResolveSeedPath("")
}

func (app *App) loadForest() ([]model.Node, error) {
	gen, err := app.idGenerator()
	if err != nil {
		return nil, err
	}
	path := app.seedPath()
	forest, err := store.LoadSeed(path, gen)
	if err != nil {
		return nil, err
	}
	app.logger().Debug("seed loaded", "path", path, "blocks", len(model.IDs(forest)))
	return forest, nil
}

func (app *App) newController(forest []model.Node) (*dnd.Controller, error) {
	gen, err := app.idGenerator()
	if err != nil {
		return nil, err
	}
	return dnd.New(forest, dnd.Options{
		IndentationWidth: app.cfg.IndentationWidth(),
		Baselines:        app.cfg.Baselines(),
		IDs:              gen,
		Palette:          palette.Default(),
		Logger:           app.logger(),
		Strict:           app.cfg.Debug(),
	})
}

func (app *App) loadController() (*dnd.Controller, error) {
	forest, err := app.loadForest()
	if err != nil {
		return nil, err
	}
	return app.newController(forest)
}

func runTUI(app *App) error {
	c, err := app.loadController()
	if err != nil {
		return err
	}
	gen, err := app.idGenerator()
	if err != nil {
		return err
	}
	return tui.Run(c, tui.Options{
		SeedPath: app.seedPath(),
		IDs:      gen,
		Watch:    app.cfg.Watch(),
		NoColor:  app.cfg.NoColor(),
		ASCII:    app.cfg.ASCIIGlyphs(),
		Logger:   app.logger(),
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
