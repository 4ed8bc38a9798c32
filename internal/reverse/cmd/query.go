package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ilreverse/internal/analysis"
	"ilreverse/internal/metadata"
)

func newTypesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types <image>",
		Short: "List type definitions",
		Example: `
# Types whose full name matches a .NET regular expression
ilreverse types app.yaml --regex '^Demo\.I'

# Case-insensitive substring search
ilreverse types app.yaml --search greet
  `,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			pattern, _ := cmd.Flags().GetString("regex")
			search, _ := cmd.Flags().GetString("search")

			rows := metadata.ListTypes(s.Module)
			switch {
			case pattern != "":
				if rows, err = metadata.ListTypesRegex(s.Module, pattern); err != nil {
					return err
				}
			case search != "":
				rows = metadata.SearchTypes(s.Module, search)
			}
			return printRows(cmd, a, rows, "No types found", stringer)
		},
	}
	cmd.Flags().StringP("regex", "r", "", "Only types whose full name matches this pattern")
	cmd.Flags().StringP("search", "s", "", "Only types whose full name contains this text")
	cmd.MarkFlagsMutuallyExclusive("regex", "search")
	return cmd
}

func newMethodsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods <image> [type]",
		Short: "List methods of a type or of the whole module",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			pattern, _ := cmd.Flags().GetString("regex")

			var rows []metadata.MethodRow
			if len(args) == 2 {
				rows, err = metadata.ListMethods(s.Module, args[1])
			} else {
				rows, err = metadata.FindMethodsRegex(s.Module, pattern)
			}
			if err != nil {
				return err
			}
			return printRows(cmd, a, rows, "No methods found", stringer)
		},
	}
	cmd.Flags().StringP("regex", "r", "", "Only methods whose name matches this pattern")
	return cmd
}

func memberCmd(a *app, use, short, empty string, list func(*metadata.Module) []metadata.MemberRow) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <image>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			return printRows(cmd, a, list(s.Module), empty, stringer)
		},
	}
}

func newFieldsCmd(a *app) *cobra.Command {
	return memberCmd(a, "fields", "List field definitions", "No fields found", metadata.ListFields)
}

func newPropertiesCmd(a *app) *cobra.Command {
	return memberCmd(a, "properties", "List property definitions", "No properties found", metadata.ListProperties)
}

func newEventsCmd(a *app) *cobra.Command {
	return memberCmd(a, "events", "List event definitions", "No events found", metadata.ListEvents)
}

func newResourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resources <image>",
		Short: "List manifest resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			return printRows(cmd, a, metadata.ListResources(s.Module), "No resources found", stringer)
		},
	}
}

func newTypeInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "type-info <image> <type>",
		Short: "Describe a type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			info, err := metadata.GetTypeInfo(s.Module, args[1])
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			t, _ := s.Module.FindType(args[1])
			fmt.Fprintln(cmd.OutOrStdout(), a.markdown(typeInfoMarkdown(info, t), 80))
			return nil
		},
	}
}

func newEntryPointCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entrypoint <image>",
		Short: "Show the module entry point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			row, err := metadata.EntryPoint(s.Module)
			if errors.Is(err, metadata.ErrNoEntryPoint) {
				fmt.Fprintln(cmd.OutOrStdout(), "No entry point found")
				return nil
			}
			if wantJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), row)
			return nil
		},
	}
}

// DataDump is the JSON form of the read command.
type DataDump struct {
	RVA  uint32 `json:"rva"`
	Size uint32 `json:"size"`
	Text string `json:"text"`
	Hex  string `json:"hex"`
}

func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return uint32(v), nil
}

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <image> <rva> <size>",
		Short: "Dump raw bytes from an image section",
		Example: `
ilreverse read app.yaml 0x2000 8
  `,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rva, err := parseUint32("rva", args[1])
			if err != nil {
				return err
			}
			size, err := parseUint32("size", args[2])
			if err != nil {
				return err
			}
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			data, err := metadata.ReadData(s.Module, rva, size)
			if err != nil {
				return err
			}
			text, dump := analysis.FormatData(data)
			if wantJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), DataDump{RVA: rva, Size: size, Text: text, Hex: dump})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s", text, dump)
			return nil
		},
	}
}
