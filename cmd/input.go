package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etomlinson-dev/KYI/internal/dataset"
	"github.com/etomlinson-dev/KYI/internal/model"
)

// inputOptions names the dataset file plus any connection exports to
// attach to its investors.
type inputOptions struct {
	Dataset     string
	Connections []string // investor=path
}

func addInputFlags(cmd *cobra.Command, in *inputOptions) {
	cmd.Flags().StringVarP(&in.Dataset, "dataset", "d", "", "company dataset file (yaml or json)")
	cmd.Flags().StringArrayVar(&in.Connections, "connections", nil, "attach a connections export to an investor, as investor=path (csv or xlsx); repeatable")
}

// loadInput reads the dataset and attaches every connections export.
func loadInput(ctx context.Context, in inputOptions) (*dataset.Dataset, error) {
	if in.Dataset == "" {
		return nil, eris.New("--dataset is required")
	}
	ds, err := dataset.Load(in.Dataset)
	if err != nil {
		return nil, err
	}

	for _, arg := range in.Connections {
		investorID, path, ok := strings.Cut(arg, "=")
		investorID = strings.TrimSpace(investorID)
		path = strings.TrimSpace(path)
		if !ok || investorID == "" || path == "" {
			return nil, eris.Errorf("invalid --connections %q: want investor=path", arg)
		}

		conns, err := readConnections(ctx, path, investorID)
		if err != nil {
			return nil, err
		}
		if err := ds.Attach(investorID, conns); err != nil {
			return nil, err
		}
		zap.L().Debug("attached connections",
			zap.String("investor_id", investorID),
			zap.String("path", path),
			zap.Int("connections", len(conns)),
		)
	}
	return ds, nil
}

func readConnections(ctx context.Context, path, investorID string) ([]model.Connection, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return dataset.ReadConnectionsXLSX(path, investorID)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open connections %s", path)
	}
	defer f.Close() //nolint:errcheck
	return dataset.ReadConnectionsCSV(ctx, f, investorID)
}
