package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/export"
	"github.com/etomlinson-dev/KYI/internal/recommend"
)

type suggestOptions struct {
	inputOptions
	outputOptions
	Sort    string
	TopN    int
	Filter  recommend.Filter
	Persist bool
}

var suggestOpts suggestOptions

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest new investors from existing investors' networks",
	Long:  "Scores every connection of the company's investors, keeps those with enough signal categories, removes people who already invest, and ranks the rest by fit.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSuggest(cmd.Context(), cfg, suggestOpts, cmd.OutOrStdout())
	},
}

func runSuggest(ctx context.Context, c *config.Config, opts suggestOptions, stdout io.Writer) error {
	if err := c.Validate("suggest"); err != nil {
		return err
	}
	ds, err := loadInput(ctx, opts.inputOptions)
	if err != nil {
		return err
	}

	rec, err := recommend.New(c.Recommend)
	if err != nil {
		return err
	}
	res, err := rec.Run(ctx, ds.Company.ID, ds.Networks, recommend.Options{
		TopN:   opts.TopN,
		Sort:   opts.Sort,
		Filter: opts.Filter,
	})
	if err != nil {
		return eris.Wrap(err, "suggest")
	}

	if opts.Persist {
		st, err := initStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := st.SaveSuggestions(ctx, res)
		if err != nil {
			return eris.Wrap(err, "suggest: save snapshot")
		}
		zap.L().Info("suggest: snapshot saved",
			zap.String("company_id", res.CompanyID),
			zap.String("snapshot_id", id),
		)
	}

	return emit(stdout, opts.outputOptions, res, export.Suggestions(res.Suggestions))
}

func init() {
	addInputFlags(suggestCmd, &suggestOpts.inputOptions)
	addOutputFlags(suggestCmd, &suggestOpts.outputOptions)

	f := suggestCmd.Flags()
	f.StringVar(&suggestOpts.Sort, "sort", "relevance", "sort order: relevance, fit_score, overlap, location")
	f.IntVarP(&suggestOpts.TopN, "top", "n", 0, "max suggestions (1-200; 0 uses recommend.default_top_n)")
	f.StringVar(&suggestOpts.Filter.Industry, "industry", "", "keep titles or companies containing this text")
	f.StringVar(&suggestOpts.Filter.Location, "location", "", "keep locations containing this text")
	f.StringVar(&suggestOpts.Filter.FirmType, "firm-type", "", "keep companies containing this text")
	f.StringVar(&suggestOpts.Filter.TitlePattern, "title", "", "keep titles containing this text")
	f.BoolVar(&suggestOpts.Persist, "persist", false, "save a snapshot of the result to the configured store")

	rootCmd.AddCommand(suggestCmd)
}
