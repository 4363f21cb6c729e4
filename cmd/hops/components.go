package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/logging"
	"github.com/hupe1980/hops/wire"
)

func newComponentsCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List the components the server would expose",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			h, err := buildHops(cfg, flags.demo, logging.NoOpLogger{}, nil)
			if err != nil {
				return err
			}

			defs := h.Registry().Definitions()
			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), defs)
			case "table":
				return writeTable(cmd.OutOrStdout(), defs)
			default:
				return fmt.Errorf("unknown format %q (want json or table)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	return cmd
}

func writeJSON(w io.Writer, defs []*core.Definition) error {
	b, err := wire.Encode(defs)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

func writeTable(w io.Writer, defs []*core.Definition) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "URI\tNAME\tINPUTS\tOUTPUTS\tCATEGORY")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s/%s\n", d.URI(), d.Name(), d.NumInputs(), d.NumOutputs(), d.Category(), d.Subcategory())
	}
	return tw.Flush()
}
