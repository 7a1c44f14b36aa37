package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"dmsreport/internal/config"
	"dmsreport/internal/export"
	"dmsreport/internal/loader"
	"dmsreport/internal/metrics"
	"dmsreport/internal/model"
	"dmsreport/internal/report"
	"dmsreport/internal/table"
)

var (
	ErrReportFailed  = errors.New("report generation failed")
	ErrInvalidFormat = errors.New("unsupported export format")
)

const topCreators = 10

// DatasetLoader is the part of loader.Loader the service depends on.
type DatasetLoader interface {
	Load(ctx context.Context) (*model.Dataset, error)
	Refresh(ctx context.Context) error
}

var _ DatasetLoader = (*loader.Loader)(nil)

// DashboardOptions toggles the optional dashboard sections.
type DashboardOptions struct {
	Versions bool
	Activity bool
}

// ReportOptions customizes a PDF report.
type ReportOptions struct {
	Title    string
	Detailed bool
}

// Artifact is a generated file ready to be handed to the caller.
type Artifact struct {
	FileName    string
	ContentType string
	Size        int
}

// Options lists the values the caller can filter by.
type Options struct {
	Departments   []string `json:"departments"`
	DocumentTypes []string `json:"document_types"`
}

// DailyCount is the number of documents created on one day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// VersionBucket is one bar of the version histogram: how many documents have Versions versions.
type VersionBucket struct {
	Versions  int `json:"versions"`
	Documents int `json:"documents"`
}

// Dashboard holds every dashboard view for one filter selection.
type Dashboard struct {
	GeneratedAt time.Time `json:"generated_at"`
	LoadedAt    time.Time `json:"loaded_at"`
	DateRange   string    `json:"date_range"`

	Metrics []report.Metric `json:"metrics"`

	FilteredDocuments     int             `json:"filtered_documents"`
	DocumentsByType       []table.Count   `json:"documents_by_type"`
	DocumentsByStatus     []table.Count   `json:"documents_by_status"`
	DocumentsPerDay       []DailyCount    `json:"documents_per_day"`
	DocumentsByDepartment []table.Count   `json:"documents_by_department"`
	UsersByRole           []table.Count   `json:"users_by_role"`
	UsersByStatus         []table.Count   `json:"users_by_status"`
	UsersByDepartment     []table.Count   `json:"users_by_department"`
	AnnouncementsPerDay   []DailyCount    `json:"announcements_per_day"`
	NotificationsPerDay   []DailyCount    `json:"notifications_per_day"`
	VersionDistribution   []VersionBucket `json:"version_distribution,omitempty"`
	TopCreators           []table.Count   `json:"top_creators,omitempty"`
}

// AnalyticsService computes dashboard views and generates export artifacts.
type AnalyticsService interface {
	// Dashboard computes the views for the filtered documents and the unfiltered users.
	Dashboard(ctx context.Context, f loader.Filter, opts DashboardOptions) (*Dashboard, error)

	// Options returns the selectable department and document type names.
	Options(ctx context.Context) (*Options, error)

	// ExportDocuments writes the filtered documents in format to w.
	ExportDocuments(ctx context.Context, f loader.Filter, format string, w io.Writer) (*Artifact, error)

	// ExportUsers writes every user in format to w.
	ExportUsers(ctx context.Context, format string, w io.Writer) (*Artifact, error)

	// Report renders the PDF report for f to w. Nothing is written on failure.
	Report(ctx context.Context, f loader.Filter, opts ReportOptions, w io.Writer) (*Artifact, error)

	// Refresh invalidates the cached dataset.
	Refresh(ctx context.Context) error

	// DefaultRange is the range used when the caller selects no dates.
	DefaultRange() model.DateRange
}

type analyticsService struct {
	loader  DatasetLoader
	cfg     config.ReportConfig
	log     *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService. log and m may be nil.
func NewAnalyticsService(l DatasetLoader, cfg config.ReportConfig, log *zap.Logger, m *metrics.Collector) AnalyticsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &analyticsService{loader: l, cfg: cfg, log: log, metrics: m, now: time.Now}
}

func (s *analyticsService) DefaultRange() model.DateRange {
	days := s.cfg.DefaultDays
	if days <= 0 {
		return nil
	}
	// Same zone the database driver decodes timestamps in
	return model.LastDays(s.now().UTC(), days)
}

func (s *analyticsService) Dashboard(ctx context.Context, f loader.Filter, opts DashboardOptions) (*Dashboard, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	docs := loader.FilterDocuments(ds, f)
	users := ds.Table(model.Users)
	announcements := loader.FilterByDate(ds.Table(model.Announcements), model.ColCreatedAt, f.Range)
	notifications := loader.FilterByDate(ds.Table(model.Notifications), model.ColCreatedAt, f.Range)

	d := &Dashboard{
		GeneratedAt:           s.now().UTC(),
		LoadedAt:              ds.LoadedAt,
		DateRange:             f.Range.String(),
		Metrics:               report.Summary(ds),
		FilteredDocuments:     docs.Len(),
		DocumentsByType:       counts(docs, model.TypeNameColumn(docs)),
		DocumentsByStatus:     counts(docs, model.ColStatus),
		DocumentsPerDay:       perDay(docs, model.ColCreatedAt),
		DocumentsByDepartment: byDepartment(docs, ds.Table(model.Departments)),
		UsersByRole:           counts(users, model.ColRole),
		UsersByStatus:         counts(users, model.UserStatusColumn(users)),
		UsersByDepartment:     counts(users, model.DepartmentNameColumn(users)),
		AnnouncementsPerDay:   perDay(announcements, model.ColCreatedAt),
		NotificationsPerDay:   perDay(notifications, model.ColCreatedAt),
	}
	if opts.Versions {
		d.VersionDistribution = versionDistribution(ds.Table(model.DocVersions))
	}
	if opts.Activity {
		d.TopCreators = creators(docs)
	}
	return d, nil
}

func (s *analyticsService) Options(ctx context.Context) (*Options, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	types := ds.Table(model.DocumentTypes)
	return &Options{
		Departments:   nonNil(table.Distinct(ds.Table(model.Departments), model.ColName)),
		DocumentTypes: nonNil(table.Distinct(types, model.ColName)),
	}, nil
}

func (s *analyticsService) ExportDocuments(ctx context.Context, f loader.Filter, format string, w io.Writer) (*Artifact, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.export(loader.FilterDocuments(ds, f), "documents", format, w)
}

func (s *analyticsService) ExportUsers(ctx context.Context, format string, w io.Writer) (*Artifact, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.export(ds.Table(model.Users), "users", format, w)
}

func (s *analyticsService) export(t *table.Table, base, format string, w io.Writer) (*Artifact, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var buf bytes.Buffer
	err = export.Write(&buf, t, format)
	s.metrics.ObserveArtifact(format, time.Since(start), err)
	if err != nil {
		if !errors.Is(err, export.ErrEmpty) {
			s.log.Error("export_failed", zap.String("table", base), zap.String("format", format), zap.Error(err))
		}
		return nil, fmt.Errorf("export %s: %w", base, err)
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("write %s export: %w", base, err)
	}
	return &Artifact{
		FileName:    export.FileName(base, format),
		ContentType: export.ContentType(format),
		Size:        n,
	}, nil
}

func (s *analyticsService) Report(ctx context.Context, f loader.Filter, opts ReportOptions, w io.Writer) (*Artifact, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = s.cfg.DefaultTitle
	}

	start := time.Now()
	buf, err := s.render(ds, f, opts.Detailed, title)
	s.metrics.ObserveArtifact("pdf", time.Since(start), err)
	if err != nil {
		s.log.Error("report_failed", zap.String("title", title), zap.Error(err))
		return nil, err
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	s.log.Info("report_generated",
		zap.String("title", title),
		zap.Int("bytes", n),
		zap.Duration("duration", time.Since(start)),
	)
	return &Artifact{FileName: report.FileName(title), ContentType: "application/pdf", Size: n}, nil
}

func (s *analyticsService) render(ds *model.Dataset, f loader.Filter, detailed bool, title string) (buf *bytes.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", ErrReportFailed, r)
		}
	}()

	r := report.Compose(report.Input{
		Dataset:     ds,
		Filtered:    loader.FilterDocuments(ds, f),
		Range:       f.Range,
		Departments: f.Departments,
		Types:       f.Types,
		GeneratedAt: s.now(),
		Detailed:    detailed,
	})
	buf = new(bytes.Buffer)
	if err := report.Render(r, title, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportFailed, err)
	}
	return buf, nil
}

func (s *analyticsService) Refresh(ctx context.Context) error {
	return s.loader.Refresh(ctx)
}

func counts(t *table.Table, column string) []table.Count {
	return nonNil(table.ValueCounts(t, column, report.NA))
}

// perDay counts rows per calendar day of column, filling days without rows with zero.
func perDay(t *table.Table, column string) []DailyCount {
	byDay := make(map[string]int)
	var first, last time.Time
	t.Each(func(row table.Row) {
		ts, ok := row.Time(column)
		if !ok {
			return
		}
		y, m, d := ts.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
		byDay[day.Format(model.DateLayout)]++
	})
	out := []DailyCount{}
	if first.IsZero() {
		return out
	}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(model.DateLayout)
		out = append(out, DailyCount{Date: key, Count: byDay[key]})
	}
	return out
}

// byDepartment counts documents per department display name.
func byDepartment(docs, departments *table.Table) []table.Count {
	if docs.Empty() || !docs.Has(model.ColDepartmentID) || !departments.Has(model.ColDepartmentID) {
		return []table.Count{}
	}
	joined, err := table.LeftJoin(docs, departments, model.ColDepartmentID, model.ColDepartmentID, table.DefaultSuffixes)
	if err != nil {
		return []table.Count{}
	}
	col := model.ColName
	if joined.Has(model.ColName + table.DefaultSuffixes.Right) {
		col = model.ColName + table.DefaultSuffixes.Right
	}
	return counts(joined, col)
}

// versionDistribution groups versions per document into a histogram ordered by version count.
func versionDistribution(versions *table.Table) []VersionBucket {
	perDoc := table.ValueCounts(versions.Filter(func(row table.Row) bool {
		_, ok := row.Get(model.ColDocID)
		return ok
	}), model.ColDocID, report.NA)

	hist := make(map[int]int)
	for _, c := range perDoc {
		hist[c.Count]++
	}
	out := make([]VersionBucket, 0, len(hist))
	for v, n := range hist {
		out = append(out, VersionBucket{Versions: v, Documents: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Versions < out[j].Versions })
	return out
}

// creators returns the ten most prolific document creators. Rows without a creator are skipped.
func creators(docs *table.Table) []table.Count {
	named := docs.Filter(func(row table.Row) bool {
		_, ok := row.Get(model.ColCreatedByName)
		return ok
	})
	return table.Top(counts(named, model.ColCreatedByName), topCreators)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ParseFormat normalizes an export format name.
func ParseFormat(s string) (string, error) {
	switch s {
	case "", export.FormatCSV:
		return export.FormatCSV, nil
	case export.FormatXLSX:
		return export.FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFormat, strconv.Quote(s))
	}
}
