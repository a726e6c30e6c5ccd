package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/etomlinson-dev/KYI/internal/accessmap"
	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/export"
)

var accessmapCmd = &cobra.Command{
	Use:   "accessmap",
	Short: "Build and inspect investor access maps",
	Long:  "Commands for building the ring-structured access graph of a company's investor networks and querying it.",
}

// graphSource selects where a graph comes from: built from a dataset, or
// loaded from the store by company ID.
type graphSource struct {
	inputOptions
	Company string
}

func addGraphSourceFlags(cmd *cobra.Command, src *graphSource) {
	addInputFlags(cmd, &src.inputOptions)
	cmd.Flags().StringVar(&src.Company, "company", "", "load the stored access map for this company instead of building one")
}

// loadGraph builds or loads the graph named by src. persist is honored
// only when building.
func loadGraph(ctx context.Context, c *config.Config, src graphSource, persist bool) (*accessmap.Graph, error) {
	if err := c.Validate("accessmap"); err != nil {
		return nil, err
	}

	if src.Dataset == "" {
		if src.Company == "" {
			return nil, eris.New("one of --dataset or --company is required")
		}
		st, err := initStore(ctx, c)
		if err != nil {
			return nil, err
		}
		defer st.Close() //nolint:errcheck

		g, err := st.LoadAccessMap(ctx, src.Company)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return nil, eris.Errorf("no stored access map for company %s", src.Company)
		}
		return g, nil
	}

	ds, err := loadInput(ctx, src.inputOptions)
	if err != nil {
		return nil, err
	}

	var st accessmap.Store
	if persist {
		s, err := initStore(ctx, c)
		if err != nil {
			return nil, err
		}
		defer s.Close() //nolint:errcheck
		st = s
	}
	b, err := accessmap.NewBuilder(c.AccessMap, st)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, ds.Company.ID, ds.Networks, accessmap.BuildOptions{Persist: persist})
}

// -- accessmap build --

type buildOptions struct {
	graphSource
	outputOptions
	Persist bool
}

var buildOpts buildOptions

var accessmapBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the access map and print its nodes and edges",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAccessmapBuild(cmd.Context(), cfg, buildOpts, cmd.OutOrStdout())
	},
}

func runAccessmapBuild(ctx context.Context, c *config.Config, opts buildOptions, stdout io.Writer) error {
	g, err := loadGraph(ctx, c, opts.graphSource, opts.Persist)
	if err != nil {
		return err
	}
	return emit(stdout, opts.outputOptions, g,
		export.GraphSummary(g),
		export.Nodes("Nodes", g.Nodes),
		export.Edges(g),
	)
}

// -- accessmap neighborhood --

type neighborhoodOptions struct {
	graphSource
	outputOptions
}

var neighborhoodOpts neighborhoodOptions

var accessmapNeighborhoodCmd = &cobra.Command{
	Use:   "neighborhood <node-key>",
	Short: "Show a node and everything one edge away",
	Long:  "Node keys are prefixed by type: company:<id>, investor:<id>, person:<normalized name>, org:<normalized name>.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNeighborhood(cmd.Context(), cfg, neighborhoodOpts, args[0], cmd.OutOrStdout())
	},
}

func runNeighborhood(ctx context.Context, c *config.Config, opts neighborhoodOptions, key string, stdout io.Writer) error {
	g, err := loadGraph(ctx, c, opts.graphSource, false)
	if err != nil {
		return err
	}
	nb, err := g.Neighborhood(key)
	if err != nil {
		return err
	}
	return emit(stdout, opts.outputOptions, nb,
		export.Nodes("Center", []accessmap.Node{nb.Center}),
		export.Nodes("Neighbors", nb.Neighbors),
		export.Edges(&accessmap.Graph{CompanyID: g.CompanyID, Edges: nb.Edges}),
	)
}

// -- accessmap reach --

type reachOptions struct {
	graphSource
	outputOptions
}

var reachOpts reachOptions

var accessmapReachCmd = &cobra.Command{
	Use:   "reach",
	Short: "Show how many people and orgs each investor reaches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runReach(cmd.Context(), cfg, reachOpts, cmd.OutOrStdout())
	},
}

func runReach(ctx context.Context, c *config.Config, opts reachOptions, stdout io.Writer) error {
	g, err := loadGraph(ctx, c, opts.graphSource, false)
	if err != nil {
		return err
	}
	rs := accessmap.Reach(g)
	return emit(stdout, opts.outputOptions, rs, export.Reach(rs))
}

func init() {
	addGraphSourceFlags(accessmapBuildCmd, &buildOpts.graphSource)
	addOutputFlags(accessmapBuildCmd, &buildOpts.outputOptions)
	accessmapBuildCmd.Flags().BoolVar(&buildOpts.Persist, "persist", false, "replace the company's stored access map")

	addGraphSourceFlags(accessmapNeighborhoodCmd, &neighborhoodOpts.graphSource)
	addOutputFlags(accessmapNeighborhoodCmd, &neighborhoodOpts.outputOptions)

	addGraphSourceFlags(accessmapReachCmd, &reachOpts.graphSource)
	addOutputFlags(accessmapReachCmd, &reachOpts.outputOptions)

	accessmapCmd.AddCommand(accessmapBuildCmd)
	accessmapCmd.AddCommand(accessmapNeighborhoodCmd)
	accessmapCmd.AddCommand(accessmapReachCmd)
	rootCmd.AddCommand(accessmapCmd)
}
