package mocks

import (
	"context"
	"io"

	"dmsreport/internal/loader"
	"dmsreport/internal/model"
	"dmsreport/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context, f loader.Filter, opts service.DashboardOptions) (*service.Dashboard, error) {
	args := m.Called(ctx, f, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}

func (m *MockAnalyticsService) Options(ctx context.Context) (*service.Options, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Options), args.Error(1)
}

func (m *MockAnalyticsService) ExportDocuments(ctx context.Context, f loader.Filter, format string, w io.Writer) (*service.Artifact, error) {
	args := m.Called(ctx, f, format, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Artifact), args.Error(1)
}

func (m *MockAnalyticsService) ExportUsers(ctx context.Context, format string, w io.Writer) (*service.Artifact, error) {
	args := m.Called(ctx, format, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Artifact), args.Error(1)
}

func (m *MockAnalyticsService) Report(ctx context.Context, f loader.Filter, opts service.ReportOptions, w io.Writer) (*service.Artifact, error) {
	args := m.Called(ctx, f, opts, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Artifact), args.Error(1)
}

func (m *MockAnalyticsService) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAnalyticsService) DefaultRange() model.DateRange {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(model.DateRange)
}
