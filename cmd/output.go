package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/etomlinson-dev/KYI/internal/export"
)

// outputOptions selects the output encoding and destination.
type outputOptions struct {
	Format string
	Out    string
}

func addOutputFlags(cmd *cobra.Command, out *outputOptions) {
	cmd.Flags().StringVarP(&out.Format, "format", "f", "table", "output format: table, csv, json, xlsx")
	cmd.Flags().StringVarP(&out.Out, "out", "o", "", "write output to a file instead of stdout (required for xlsx)")
}

// emit writes v as JSON or tables as the selected table format.
func emit(stdout io.Writer, opts outputOptions, v any, tables ...*export.Table) error {
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	if format == export.FormatXLSX && opts.Out == "" {
		return eris.New("xlsx output requires --out")
	}

	w := stdout
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return eris.Wrapf(err, "create %s", opts.Out)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	if format == export.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	}
	return export.Write(w, format, tables...)
}
