package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/p-blackswan/designstore/internal/project"
)

// NewScriptCommand creates the script command group.
func NewScriptCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Manage script documentation",
	}
	cmd.AddCommand(newScriptGetCommand(rootOpts))
	cmd.AddCommand(newScriptAddCommand(rootOpts))
	cmd.AddCommand(newScriptListCommand(rootOpts))
	return cmd
}

func newScriptGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a script's documentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			doc, found, err := s.designs.GetScriptByName(s.projectID, args[0])
			if err != nil {
				return err
			}
			if !found {
				return NewExitError(ExitNotFound, fmt.Sprintf("script %q not found", args[0]))
			}
			return opts.emit(cmd, doc, func(w io.Writer) { printScript(w, doc) })
		},
	}
}

// ScriptAddOptions holds flags for script add.
type ScriptAddOptions struct {
	*RootOptions
	Input  project.ScriptInput
	Params []string
}

func newScriptAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScriptAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Record documentation for a script",
		Long: `Record documentation for a script. Every call stores a new document,
even when a script with the same name already exists.

Example:
  designctl script add build.sh -d "builds the binary" --usage "./build.sh [target]" --param target=make target`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := opts.Input
			in.ScriptName = args[0]
			for _, p := range opts.Params {
				k, v, ok := strings.Cut(p, "=")
				if !ok || k == "" {
					return NewExitError(ExitUsage, fmt.Sprintf("invalid --param %q: want name=description", p))
				}
				if in.Parameters == nil {
					in.Parameters = map[string]string{}
				}
				in.Parameters[k] = v
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			doc, err := s.designs.SetScript(s.projectID, in)
			if err != nil {
				return err
			}
			return opts.emit(cmd, doc, func(w io.Writer) {
				success(w, "script %s saved as %s", doc.ScriptName, doc.ScriptID)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Input.Description, "description", "d", "", "script description")
	f.StringVar(&opts.Input.Usage, "usage", "", "usage line")
	f.StringArrayVar(&opts.Input.Examples, "example", nil, "example invocation (repeatable)")
	f.StringArrayVar(&opts.Params, "param", nil, "parameter as name=description (repeatable)")
	f.StringVar(&opts.Input.Notes, "notes", "", "free-form notes")

	return cmd
}

func newScriptListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List script documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			scripts, err := s.designs.ListScripts(s.projectID)
			if err != nil {
				return err
			}
			return opts.emit(cmd, scripts, func(w io.Writer) {
				if len(scripts) == 0 {
					fmt.Fprintln(w, "No scripts.")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tID\tDESCRIPTION")
				for _, sc := range scripts {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", sc.ScriptName, sc.ScriptID, sc.Description)
				}
				tw.Flush()
			})
		},
	}
}

func printScript(w io.Writer, doc *project.ScriptDocumentation) {
	fmt.Fprintf(w, "Script:      %s (%s)\n", doc.ScriptName, doc.ScriptID)
	fmt.Fprintf(w, "Description: %s\n", doc.Description)
	fmt.Fprintf(w, "Usage:       %s\n", doc.Usage)
	if len(doc.Parameters) > 0 {
		keys := make([]string, 0, len(doc.Parameters))
		for k := range doc.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "Parameters:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, doc.Parameters[k])
		}
	}
	if len(doc.Examples) > 0 {
		fmt.Fprintln(w, "Examples:")
		for _, ex := range doc.Examples {
			fmt.Fprintf(w, "  $ %s\n", ex)
		}
	}
	if doc.Notes != "" {
		fmt.Fprintf(w, "Notes:       %s\n", doc.Notes)
	}
}
