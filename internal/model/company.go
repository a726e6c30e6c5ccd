// Package model defines the input records consumed by the recommendation core.
package model

// Company is the portfolio company whose investors' networks are mined.
type Company struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Investor is an already-known person tied to a company.
type Investor struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Title      string `json:"title,omitempty" yaml:"title"`
	Company    string `json:"company,omitempty" yaml:"company"` // firm
	Location   string `json:"location,omitempty" yaml:"location"`
	Industry   string `json:"industry,omitempty" yaml:"industry"`
	ExternalID string `json:"external_id,omitempty" yaml:"external_id"` // e.g. LinkedIn profile URL
}

// Connection is a person or organization observed in an investor's network.
type Connection struct {
	Name       string `json:"name" yaml:"name"`
	Title      string `json:"title,omitempty" yaml:"title"`
	Company    string `json:"company,omitempty" yaml:"company"`
	Location   string `json:"location,omitempty" yaml:"location"`
	ExternalID string `json:"external_id,omitempty" yaml:"external_id"`
	InvestorID string `json:"investor_id,omitempty" yaml:"investor_id"`
}

// InvestorNetwork pairs an investor with the connections exported from
// their network.
type InvestorNetwork struct {
	Investor    Investor     `json:"investor" yaml:"investor"`
	Connections []Connection `json:"connections" yaml:"connections"`
}
