package mocks

import (
	"context"

	"dmsreport/internal/table"
	"github.com/stretchr/testify/mock"
)

type MockTableReader struct {
	mock.Mock
}

func (m *MockTableReader) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*table.Table), args.Error(1)
}
