package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/p-blackswan/designstore/internal/project"
)

// NewModuleCommand creates the module command group.
func NewModuleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "module",
		Aliases: []string{"mod"},
		Short:   "Manage module documentation",
	}
	cmd.AddCommand(newModuleGetCommand(rootOpts))
	cmd.AddCommand(newModuleSetCommand(rootOpts))
	cmd.AddCommand(newModuleListCommand(rootOpts))
	cmd.AddCommand(newModuleDeleteCommand(rootOpts))
	return cmd
}

func newModuleGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a module's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			details, found, err := s.designs.GetModuleByName(s.projectID, args[0])
			if err != nil {
				return err
			}
			if !found {
				return NewExitError(ExitNotFound, fmt.Sprintf("module %q not found", args[0]))
			}
			return opts.emit(cmd, details, func(w io.Writer) { printModule(w, details) })
		},
	}
}

// ModuleSetOptions holds flags for module set.
type ModuleSetOptions struct {
	*RootOptions
	Input project.ModuleInput
	From  string
}

func newModuleSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModuleSetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a module's details",
		Long: `Create or update a module's details.

A module that is already listed in the architecture keeps its id; a new
one is added to the list.

Example:
  designctl module set auth -d "handles login" --in credentials --out token`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := project.ModuleInput{}
			if opts.From != "" {
				if err := readInput(cmd, opts.From, &in); err != nil {
					return err
				}
			}
			mergeModuleFlags(cmd, &in, &opts.Input)
			in.Name = args[0]

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if _, found, err := s.designs.GetArchitecture(s.projectID); err == nil && !found {
				warning(cmd.ErrOrStderr(), "project %s has no architecture; the module will not be listed", s.projectID)
			}
			id, err := s.designs.UpsertModule(s.projectID, in)
			if err != nil {
				return err
			}
			out := struct {
				ProjectID string `json:"projectId" yaml:"projectId"`
				ModuleID  string `json:"moduleId" yaml:"moduleId"`
			}{s.projectID, id}
			return opts.emit(cmd, out, func(w io.Writer) {
				success(w, "module %s saved as %s", in.Name, id)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Input.Description, "description", "d", "", "module description")
	f.StringArrayVar(&opts.Input.Inputs, "in", nil, "module input (repeatable)")
	f.StringArrayVar(&opts.Input.Outputs, "out", nil, "module output (repeatable)")
	f.StringArrayVar(&opts.Input.Dependencies, "dependency", nil, "module dependency (repeatable)")
	f.StringArrayVar(&opts.Input.Files, "file", nil, "source file (repeatable)")
	f.StringVar(&opts.Input.Notes, "notes", "", "free-form notes")
	f.StringVarP(&opts.From, "from", "f", "", "read the input from a JSON or YAML file (- for stdin)")

	return cmd
}

// mergeModuleFlags copies explicitly set flags over the file input.
func mergeModuleFlags(cmd *cobra.Command, in, flags *project.ModuleInput) {
	set := cmd.Flags().Changed
	if set("description") {
		in.Description = flags.Description
	}
	if set("in") {
		in.Inputs = flags.Inputs
	}
	if set("out") {
		in.Outputs = flags.Outputs
	}
	if set("dependency") {
		in.Dependencies = flags.Dependencies
	}
	if set("file") {
		in.Files = flags.Files
	}
	if set("notes") {
		in.Notes = flags.Notes
	}
}

func newModuleListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List module details documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			modules, err := s.designs.ListModules(s.projectID)
			if err != nil {
				return err
			}
			return opts.emit(cmd, modules, func(w io.Writer) {
				if len(modules) == 0 {
					fmt.Fprintln(w, "No modules.")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tID\tDESCRIPTION")
				for _, m := range modules {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.ModuleID, m.Description)
				}
				tw.Flush()
			})
		},
	}
}

func newModuleDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a module and remove it from the architecture",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := s.designs.DeleteModuleByName(s.projectID, args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "module %s deleted", args[0])
			return nil
		},
	}
}

func printModule(w io.Writer, m *project.ModuleDetails) {
	fmt.Fprintf(w, "Module:       %s (%s)\n", m.Name, m.ModuleID)
	fmt.Fprintf(w, "Description:  %s\n", m.Description)
	fmt.Fprintf(w, "Inputs:       %s\n", joinOrDash(m.Inputs))
	fmt.Fprintf(w, "Outputs:      %s\n", joinOrDash(m.Outputs))
	if len(m.Dependencies) > 0 {
		fmt.Fprintf(w, "Dependencies: %s\n", strings.Join(m.Dependencies, ", "))
	}
	if len(m.Files) > 0 {
		fmt.Fprintf(w, "Files:        %s\n", strings.Join(m.Files, ", "))
	}
	if m.Notes != "" {
		fmt.Fprintf(w, "Notes:        %s\n", m.Notes)
	}
	if len(m.UsageExamples) > 0 {
		fmt.Fprintln(w, "Usage examples:")
		for _, ex := range m.UsageExamples {
			fmt.Fprintf(w, "  - %s\n", ex.Title)
			if ex.Command != "" {
				fmt.Fprintf(w, "    $ %s\n", ex.Command)
			}
		}
	}
}

func joinOrDash(xs []string) string {
	if len(xs) == 0 {
		return "-"
	}
	return strings.Join(xs, ", ")
}
