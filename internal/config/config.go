// Package config resolves formbuilder settings from defaults, YAML files, FB_* environment
// variables and command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"formbuilder/internal/dnd"
	"formbuilder/internal/model"
)

const (
	KeyIndentationWidth = "indentation-width"
	KeyPaletteBaseline  = "palette-baseline"
	KeyTreeBaseline     = "tree-baseline"
	KeyIDStyle          = "ids.style"
	KeyIDPrefix         = "ids.prefix"
	KeySeedPath         = "seed.path"
	KeyOutputFormat     = "output.format"
	KeyOutputPretty     = "output.pretty"
	KeyDebug            = "debug"
	KeyNoColor          = "tui.no-color"
	KeyWatch            = "tui.watch"
	KeyGlyphs           = "tui.glyphs"
)

const (
	envPrefix      = "FB"
	dirName        = ".formbuilder"
	configFileName = "config.yaml"
)

type settings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
	overrides         map[string]any
}

// Option configures Load. Useful for tests to override paths.
type Option func(*settings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(s *settings) { s.workingDir = dir }
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(s *settings) { s.projectConfigPath = path }
}

// WithUserConfig overrides ~/.formbuilder/config.yaml.
func WithUserConfig(path string) Option {
	return func(s *settings) { s.userConfigPath = path }
}

// WithOverrides injects values typically coming from CLI flags. They win over everything.
func WithOverrides(overrides map[string]any) Option {
	return func(s *settings) {
		if s.overrides == nil {
			s.overrides = map[string]any{}
		}
		for k, v := range overrides {
			s.overrides[k] = v
		}
	}
}

// Config is a resolved, read-only view of the settings.
type Config struct {
	v *viper.Viper

	// ProjectFile and UserFile are the config files that were considered (may not exist).
	ProjectFile string
	UserFile    string
}

// Load resolves configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Load(opts ...Option) (*Config, error) {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	workingDir := strings.TrimSpace(s.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userPath := strings.TrimSpace(s.userConfigPath)
	if userPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			userPath = filepath.Join(home, dirName, configFileName)
		}
	}

	projectPath := strings.TrimSpace(s.projectConfigPath)
	if projectPath == "" {
		p, err := findProjectConfig(workingDir)
		if err != nil {
			return nil, err
		}
		projectPath = p
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userPath); err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	if err := mergeConfigFile(v, projectPath); err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}
	for k, val := range s.overrides {
		v.Set(k, val)
	}

	c := &Config{v: v, ProjectFile: projectPath, UserFile: userPath}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyIndentationWidth, dnd.DefaultIndentationWidth)
	v.SetDefault(KeyPaletteBaseline, dnd.DefaultPaletteBaseline)
	v.SetDefault(KeyTreeBaseline, 0)
	v.SetDefault(KeyIDStyle, "random")
	v.SetDefault(KeyIDPrefix, "blk")
	v.SetDefault(KeySeedPath, "")
	v.SetDefault(KeyOutputFormat, "json")
	v.SetDefault(KeyOutputPretty, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyWatch, true)
	v.SetDefault(KeyGlyphs, "unicode")
}

func (c *Config) validate() error {
	if w := c.v.GetInt(KeyIndentationWidth); w <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyIndentationWidth, w)
	}
	switch c.OutputFormat() {
	case "json", "edn", "text":
	default:
		return fmt.Errorf("%s: unsupported format %q (want json, edn or text)", KeyOutputFormat, c.OutputFormat())
	}
	switch c.IDStyle() {
	case "random", "uuid", "sequence", "seq":
	default:
		return fmt.Errorf("%s: unknown id style %q", KeyIDStyle, c.IDStyle())
	}
	switch c.Glyphs() {
	case "unicode", "utf8", "ascii":
	default:
		return fmt.Errorf("%s: unknown glyph set %q (want unicode or ascii)", KeyGlyphs, c.Glyphs())
	}
	return nil
}

func (c *Config) IndentationWidth() int { return c.v.GetInt(KeyIndentationWidth) }

// Baselines returns the per-container baseline offsets for dnd.Options.
func (c *Config) Baselines() map[model.Container]float64 {
	return map[model.Container]float64{
		model.ContainerPalette: c.v.GetFloat64(KeyPaletteBaseline),
		model.ContainerTree:    c.v.GetFloat64(KeyTreeBaseline),
	}
}

func (c *Config) IDStyle() string {
	return strings.ToLower(strings.TrimSpace(c.v.GetString(KeyIDStyle)))
}

func (c *Config) IDPrefix() string { return strings.TrimSpace(c.v.GetString(KeyIDPrefix)) }

func (c *Config) SeedPath() string { return strings.TrimSpace(c.v.GetString(KeySeedPath)) }

func (c *Config) OutputFormat() string {
	return strings.ToLower(strings.TrimSpace(c.v.GetString(KeyOutputFormat)))
}

func (c *Config) Pretty() bool { return c.v.GetBool(KeyOutputPretty) }

func (c *Config) Debug() bool { return c.v.GetBool(KeyDebug) }

// NoColor also honors the NO_COLOR convention.
func (c *Config) NoColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return c.v.GetBool(KeyNoColor)
}

func (c *Config) Watch() bool { return c.v.GetBool(KeyWatch) }

func (c *Config) Glyphs() string {
	return strings.ToLower(strings.TrimSpace(c.v.GetString(KeyGlyphs)))
}

// ASCIIGlyphs reports whether the TUI should avoid box-drawing and arrow glyphs.
func (c *Config) ASCIIGlyphs() bool { return c.Glyphs() == "ascii" }

// AllSettings returns every resolved key, for `formbuilder config`.
func (c *Config) AllSettings() map[string]any { return c.v.AllSettings() }

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, dirName, configFileName)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
