// Package dataset loads company investor networks from files.
package dataset

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/etomlinson-dev/KYI/internal/model"
)

// Format is a dataset encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Dataset is one company and its investors' networks.
type Dataset struct {
	Company  model.Company           `json:"company" yaml:"company"`
	Networks []model.InvestorNetwork `json:"investors" yaml:"investors"`
}

// FormatFor picks a format from a file extension. Anything that is not
// .json is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads a dataset file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	ds, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: load %s", path)
	}
	return ds, nil
}

// Decode parses a dataset from r.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	var ds Dataset
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&ds); err != nil {
			return nil, eris.Wrap(err, "dataset: decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&ds); err != nil && err != io.EOF {
			return nil, eris.Wrap(err, "dataset: decode yaml")
		}
	default:
		return nil, eris.Errorf("dataset: unknown format %q", format)
	}

	ds.Company.ID = strings.TrimSpace(ds.Company.ID)
	if ds.Company.ID == "" {
		return nil, eris.New("dataset: company.id is required")
	}
	return &ds, nil
}

// Attach appends conns to the network of investorID. It fails when the
// investor is not part of the dataset.
func (d *Dataset) Attach(investorID string, conns []model.Connection) error {
	for i := range d.Networks {
		if d.Networks[i].Investor.ID == investorID {
			d.Networks[i].Connections = append(d.Networks[i].Connections, conns...)
			return nil
		}
	}
	return eris.Errorf("dataset: investor %q not found", investorID)
}
