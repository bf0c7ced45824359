package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/effectsim/internal/units"
)

var column string

func tableCommands() []*cobra.Command {
	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "list the loaded data tables",
		Args:  cobra.NoArgs,
		RunE:  listTables,
	}

	interpolateCmd := &cobra.Command{
		Use:   "interpolate [table] [coords...]",
		Short: "interpolate a table at a point",
		Long:  "interpolate evaluates a table at the given coordinates, one per axis in the order shown by 'tables'",
		Args:  cobra.MinimumNArgs(2),
		RunE:  interpolate,
	}
	interpolateCmd.Flags().StringVar(&column, "column", "", "column to read (default: first)")

	convertCmd := &cobra.Command{
		Use:   "convert [value] [from] [to]",
		Short: "convert a value between units",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args[:1])
			if err != nil {
				return err
			}
			out, err := units.Convert(v[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(units.Units(), ", "))
			}
			fmt.Printf("%g %s = %g %s\n", v[0], args[1], out, args[2])
			return nil
		},
	}

	return []*cobra.Command{tablesCmd, interpolateCmd, convertCmd}
}

func listTables(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	w := newTabWriter()
	fmt.Fprintln(w, "ID\tKIND\tAXES\tCOLUMNS\tSAMPLES\tSOURCE")
	for _, info := range cat.List() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			info.ID,
			info.Kind,
			strings.Join(info.Axes, ", "),
			strings.Join(info.Columns, ", "),
			info.Samples,
			info.Source,
		)
	}
	return w.Flush()
}

func interpolate(cmd *cobra.Command, args []string) error {
	id := args[0]
	coords, err := parseFloats(args[1:])
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	if column == "" {
		v, err := cat.Interpolate(id, coords...)
		if err != nil {
			return err
		}
		fmt.Printf("%g\n", v)
		return nil
	}

	t, err := cat.Table(id)
	if err != nil {
		return err
	}
	v, err := t.InterpolateColumn(column, coords...)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %g\n", column, v)
	return nil
}
