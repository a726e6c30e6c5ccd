package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/export"
	"github.com/etomlinson-dev/KYI/internal/overlap"
)

type overlapOptions struct {
	inputOptions
	outputOptions
	Matrix  bool
	Persist bool
}

// overlapReport is the JSON form of the overlap command's output.
type overlapReport struct {
	CompanyID string          `json:"company_id"`
	Metrics   overlap.Metrics `json:"metrics"`
	Matrix    *overlap.Matrix `json:"matrix,omitempty"`
}

var overlapOpts overlapOptions

var overlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Measure how much the company's investor networks overlap",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOverlap(cmd.Context(), cfg, overlapOpts, cmd.OutOrStdout())
	},
}

func runOverlap(ctx context.Context, c *config.Config, opts overlapOptions, stdout io.Writer) error {
	if err := c.Validate("overlap"); err != nil {
		return err
	}
	ds, err := loadInput(ctx, opts.inputOptions)
	if err != nil {
		return err
	}

	a, err := overlap.New(c.Overlap)
	if err != nil {
		return err
	}
	report := overlapReport{CompanyID: ds.Company.ID, Metrics: a.Compute(ds.Networks)}
	tables := []*export.Table{
		export.Overlap(report.Metrics),
		export.TopEntities("Top People", report.Metrics.TopPeople),
		export.TopEntities("Top Orgs", report.Metrics.TopOrgs),
	}
	if opts.Matrix {
		m := a.Matrix(ds.Networks)
		report.Matrix = &m
		tables = append(tables, export.Matrix(m))
	}

	if opts.Persist {
		st, err := initStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := st.SaveOverlap(ctx, report.CompanyID, report.Metrics)
		if err != nil {
			return eris.Wrap(err, "overlap: save snapshot")
		}
		zap.L().Info("overlap: snapshot saved",
			zap.String("company_id", report.CompanyID),
			zap.String("snapshot_id", id),
		)
	}

	return emit(stdout, opts.outputOptions, report, tables...)
}

func init() {
	addInputFlags(overlapCmd, &overlapOpts.inputOptions)
	addOutputFlags(overlapCmd, &overlapOpts.outputOptions)
	overlapCmd.Flags().BoolVar(&overlapOpts.Matrix, "matrix", false, "include the pairwise investor matrix")
	overlapCmd.Flags().BoolVar(&overlapOpts.Persist, "persist", false, "save a snapshot of the metrics to the configured store")

	rootCmd.AddCommand(overlapCmd)
}
