package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

var inspectOptions []string

var inspectCmd = &cobra.Command{
	Use:   "inspect <provider> <path>",
	Short: "Describe the layers and columns of a source",
	Long: `inspect reads a source with the named provider and prints its layers,
the geometry types it holds and a summary of every attribute column.
Extra provider options are passed with --opt key=value.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := inspectConfig(args[1], inspectOptions)
		if err != nil {
			return err
		}
		return inspect(context.Background(), cmd.OutOrStdout(), args[0], config)
	},
}

func init() {
	inspectCmd.Flags().StringSliceVar(&inspectOptions, "opt", nil, "provider option as key=value, repeatable")
}

// inspectConfig sets path under both keys providers use for files.
func inspectConfig(path string, opts []string) (dict.Dict, error) {
	config := dict.Dict{"path": path, "filepath": path}
	for _, o := range opts {
		kv := strings.SplitN(o, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("option %q is not key=value", o)
		}
		config[kv[0]] = optionValue(kv[1])
	}
	return config, nil
}

func optionValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func inspect(ctx context.Context, w io.Writer, driver string, config dict.Dict) error {
	r, err := provider.For(driver, config)
	if err != nil {
		return err
	}
	if l, ok := r.(provider.Layerer); ok {
		infos, err := l.Layers(ctx)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Fprintf(w, "layer %v (%v) %v srid=%v\n", info.Name(), info.ID(), provider.GeomTypeName(info.GeomType()), info.SRID())
		}
	}
	f, err := r.Read(ctx)
	if err != nil {
		return err
	}
	writeSummary(w, f.Summarize())
	return nil
}

func writeSummary(w io.Writer, s frame.Summary) {
	fmt.Fprintf(w, "rows: %d\nsrid: %v\n", s.Rows, s.SRID)
	if s.Rows > 0 {
		fmt.Fprintf(w, "bounds: [%g %g] [%g %g]\n", s.BoundMin[0], s.BoundMin[1], s.BoundMax[0], s.BoundMax[1])
	}
	types := make([]string, 0, len(s.GeomTypes))
	for t := range s.GeomTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "geometry %v: %d\n", t, s.GeomTypes[t])
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tKIND\tNULLS\tMIN\tMAX\tMEAN\tSTDDEV")
	for _, c := range s.Columns {
		if !c.Numeric {
			fmt.Fprintf(tw, "%v\t%v\t%d\t\t\t\t\n", c.Name, c.Kind, c.Nulls)
			continue
		}
		fmt.Fprintf(tw, "%v\t%v\t%d\t%g\t%g\t%.4g\t%.4g\n", c.Name, c.Kind, c.Nulls, c.Min, c.Max, c.Mean, c.StdDev)
	}
	tw.Flush()
}
