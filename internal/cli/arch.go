package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/p-blackswan/designstore/internal/project"
)

// NewArchCommand creates the arch command group.
func NewArchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arch",
		Short: "Show or replace the project architecture",
	}
	cmd.AddCommand(newArchGetCommand(rootOpts))
	cmd.AddCommand(newArchSetCommand(rootOpts))
	return cmd
}

func newArchGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the architecture document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			arch, found, err := s.designs.GetArchitecture(s.projectID)
			if err != nil {
				return err
			}
			if !found {
				return NewExitError(ExitNotFound, fmt.Sprintf("project %s has no architecture", s.projectID))
			}
			return opts.emit(cmd, arch, func(w io.Writer) { printArchitecture(w, arch) })
		},
	}
}

// ArchSetOptions holds flags for arch set.
type ArchSetOptions struct {
	*RootOptions
	Description string
	Modules     []string
	From        string
}

func newArchSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchSetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace the architecture document",
		Long: `Create or replace the architecture document.

Modules given with --module reuse the id of an existing module with the
same name. Without --module the current module list is kept.

Example:
  designctl arch set --description "Auth service" --module "auth=handles login"
  designctl arch set --from architecture.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.input(cmd)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			arch, err := s.designs.SetArchitecture(s.projectID, in)
			if err != nil {
				return err
			}
			return opts.emit(cmd, arch, func(w io.Writer) {
				success(w, "architecture saved for %s (%d modules)", arch.ProjectID, len(arch.Modules))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "architecture description")
	cmd.Flags().StringArrayVarP(&opts.Modules, "module", "m", nil, "module as name=description (repeatable)")
	cmd.Flags().StringVarP(&opts.From, "from", "f", "", "read the input from a JSON or YAML file (- for stdin)")

	return cmd
}

func (o *ArchSetOptions) input(cmd *cobra.Command) (project.SetArchitectureInput, error) {
	var in project.SetArchitectureInput
	if o.From != "" {
		if err := readInput(cmd, o.From, &in); err != nil {
			return in, err
		}
	}
	if cmd.Flags().Changed("description") {
		in.Description = o.Description
	}
	for _, m := range o.Modules {
		name, desc, _ := strings.Cut(m, "=")
		if name == "" {
			return in, NewExitError(ExitUsage, fmt.Sprintf("invalid --module %q: want name=description", m))
		}
		in.Modules = append(in.Modules, project.ModuleSummaryInput{Name: name, Description: desc})
	}
	return in, nil
}

// readInput decodes a JSON or YAML document from path, or stdin for "-".
func readInput(cmd *cobra.Command, path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return WrapExitError(ExitUsage, "cannot read input", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return WrapExitError(ExitUsage, "cannot parse input", err)
	}
	return nil
}

func printArchitecture(w io.Writer, arch *project.ProjectArchitecture) {
	fmt.Fprintf(w, "Project:     %s\n", arch.ProjectID)
	fmt.Fprintf(w, "Description: %s\n", arch.Description)
	fmt.Fprintln(w)

	if len(arch.Modules) == 0 {
		fmt.Fprintln(w, "No modules.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tID\tDESCRIPTION")
		for _, m := range arch.Modules {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.ID, m.Description)
		}
		tw.Flush()
	}

	if len(arch.DataFlow) == 0 {
		return
	}
	names := make([]string, 0, len(arch.DataFlow))
	for name := range arch.DataFlow {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Data flow:")
	for _, name := range names {
		e := arch.DataFlow[name]
		fmt.Fprintf(w, "  %s\n", name)
		if len(e.DependsOn) > 0 {
			fmt.Fprintf(w, "    depends on:  %s\n", strings.Join(e.DependsOn, ", "))
		}
		if len(e.ProvidesTo) > 0 {
			fmt.Fprintf(w, "    provides to: %s\n", strings.Join(e.ProvidesTo, ", "))
		}
		if e.DataTransformation != "" {
			fmt.Fprintf(w, "    transforms:  %s\n", e.DataTransformation)
		}
	}
}
