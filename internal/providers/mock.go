package providers

import (
	"context"
	"fmt"
)

// MockDirectory returns fixed plausible results for development and tests.
type MockDirectory struct{}

func NewMockDirectory() *MockDirectory { return &MockDirectory{} }

func (d *MockDirectory) Search(_ context.Context, q Query) ([]Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return []Record{
		{
			Name:     fmt.Sprintf("%s Clinic of %s", q.Specialty, q.Location),
			Address:  fmt.Sprintf("12 Hospital Road, %s", q.Location),
			Phone:    "+233 30 274 0000",
			Verified: true,
		},
		{
			Name:    fmt.Sprintf("%s Community Health Centre", q.Location),
			Address: fmt.Sprintf("45 Market Street, %s", q.Location),
			Phone:   "+233 30 274 1111",
		},
	}, nil
}
