package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitkarma/internal/config"
)

// defaultConfigFile is validated when no argument is given.
const defaultConfigFile = ".gitkarma.yaml"

// NewConfigCommand creates the config command with its show and validate
// subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate gitkarma configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())

	return cmd
}

// configView is the yaml shape config show prints: the resolved Config with
// every default applied.
type configView struct {
	Karma      map[string]int `yaml:"karma,omitempty"`
	URL        urlView        `yaml:"url"`
	File       fileView       `yaml:"file"`
	Thresholds []int          `yaml:"thresholds"`
	Workers    int            `yaml:"workers"`
	Skip       skipView       `yaml:"skip"`
	Log        logView        `yaml:"log"`
	Report     reportView     `yaml:"report"`
}

type urlView struct {
	Commit string `yaml:"commit"`
	Author string `yaml:"author"`
}

type fileView struct {
	Extension string `yaml:"extension"`
}

type skipView struct {
	Patterns []string `yaml:"patterns,omitempty"`
	Vendored bool     `yaml:"vendored"`
}

type logView struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type reportView struct {
	Dir string `yaml:"dir"`
}

func newConfigShowCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(buildConfigView(cfg))
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), string(out))

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: .gitkarma.yaml in . or $HOME)")

	return cmd
}

func buildConfigView(cfg *config.Config) configView {
	view := configView{
		Karma:      cfg.Karma,
		URL:        urlView{Commit: cfg.URL.Commit, Author: cfg.URL.Author},
		File:       fileView{Extension: cfg.File.Extension},
		Thresholds: cfg.Thresholds,
		Workers:    cfg.Workers,
		Skip:       skipView{Patterns: cfg.Skip.Patterns, Vendored: cfg.Skip.Vendored},
		Log:        logView{Level: cfg.Log.Level, JSON: cfg.Log.JSON},
		Report:     reportView{Dir: cfg.Report.Dir},
	}

	if len(view.Thresholds) == 0 {
		view.Thresholds = config.DefaultThresholds
	}

	return view
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) > 0 {
				path = args[0]
			}

			issues, err := config.ValidateFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(issues) == 0 {
				color.New(color.FgGreen).Fprintf(out, "%s is valid\n", path)

				return nil
			}

			color.New(color.FgRed).Fprintf(out, "%s failed validation\n", path)

			for _, issue := range issues {
				color.New(color.FgRed).Fprintf(out, "  - %s: %s\n", issue.Field, issue.Description)
			}

			return fmt.Errorf("%w: %s (%d issues)", config.ErrSchemaViolation, path, len(issues))
		},
	}
}
