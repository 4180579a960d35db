// Package cli implements the designctl command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/p-blackswan/designstore/internal/config"
	"github.com/p-blackswan/designstore/internal/project"
	"github.com/p-blackswan/designstore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir string
	Workdir string
	Output  string // "text" | "json" | "yaml"
	Verbose bool

	storeOpts []project.Option
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for designctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand()
}

func newRootCommand(storeOpts ...project.Option) *cobra.Command {
	opts := &RootOptions{storeOpts: storeOpts}

	cmd := &cobra.Command{
		Use:   "designctl",
		Short: "Inspect and edit project design documents",
		Long: `designctl reads and writes the JSON design documents kept for a project:
its architecture overview, per-module details and script documentation.

The project is identified by a working directory (the current one unless
--workdir is given), normalized into a filesystem-safe id.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidOutputs, opts.Output) {
				return NewExitError(ExitUsage, fmt.Sprintf("invalid output %q: must be one of %v", opts.Output, ValidOutputs))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default $DATA_DIR or the user config dir)")
	cmd.PersistentFlags().StringVarP(&opts.Workdir, "workdir", "w", "", "project working directory (default current directory)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging to stderr")

	cmd.AddCommand(NewArchCommand(opts))
	cmd.AddCommand(NewModuleCommand(opts))
	cmd.AddCommand(NewScriptCommand(opts))
	cmd.AddCommand(NewIDCommand(opts))

	return cmd
}

// session is an opened design store bound to one project.
type session struct {
	designs   *project.Store
	projectID string
}

// open loads configuration, applies flag overrides and resolves the project.
func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitUsage, "invalid configuration", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	baseDir, err := cfg.BaseDir()
	if err != nil {
		return nil, WrapExitError(ExitFailure, "cannot resolve data directory", err)
	}

	logger := o.logger(cmd.ErrOrStderr())
	docs, err := store.New(store.Config{BaseDir: baseDir}, logger)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "cannot open data directory", err)
	}

	projectID, err := o.projectID(cfg.DefaultProjectID)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("data_dir", baseDir).Str("project_id", projectID).Msg("project resolved")

	return &session{
		designs:   project.NewStore(docs, logger, o.storeOpts...),
		projectID: projectID,
	}, nil
}

func (o *RootOptions) projectID(fallback string) (string, error) {
	raw := o.Workdir
	if raw == "" {
		if wd, err := os.Getwd(); err == nil {
			raw = wd
		}
	}
	return project.ResolveID(raw, fallback)
}

func (o *RootOptions) logger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
