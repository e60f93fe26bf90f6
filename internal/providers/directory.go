package providers

import (
	"context"
	"strings"
)

// Record describes one healthcare provider in a search result.
type Record struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Verified   bool   `json:"verified"`
	BookingURL string `json:"booking_url,omitempty"`
}

// Query narrows a provider search. Specialty and Location are required,
// InsuranceHint is free text such as an NHIS scheme name.
type Query struct {
	Specialty     string `json:"specialty"`
	Location      string `json:"location"`
	InsuranceHint string `json:"insurance_hint,omitempty"`
	Language      string `json:"language,omitempty"`
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.Specialty) == "" {
		return errMissingSpecialty
	}
	if strings.TrimSpace(q.Location) == "" {
		return errMissingLocation
	}
	return nil
}

// Directory finds providers matching a query, best match first.
type Directory interface {
	Search(ctx context.Context, q Query) ([]Record, error)
}
