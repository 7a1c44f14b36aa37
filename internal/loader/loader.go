// Package loader reads the source tables, joins documents and users to their lookup tables
// and memoizes the result for the cache window.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dmsreport/internal/cache"
	"dmsreport/internal/metrics"
	"dmsreport/internal/model"
	"dmsreport/internal/repository"
	"dmsreport/internal/table"
)

// ErrUnavailable is the single failure signal of a load. The cause is wrapped.
var ErrUnavailable = errors.New("could not load data")

// DatasetKey is the cache key of the full dataset.
const DatasetKey = "dataset"

// fetchTimeout bounds a shared read, which outlives the caller that started it.
const fetchTimeout = 2 * time.Minute

var (
	documentsJoin = table.Suffixes{Left: "", Right: "_type"}
	usersJoin     = table.Suffixes{Left: "_user", Right: "_dept"}
)

// Loader produces the dataset every view and artifact is computed from.
type Loader struct {
	reader  repository.TableReader
	store   cache.Store
	log     *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
	group   singleflight.Group
}

// New creates a Loader. store may be nil to disable memoization; log and m may be nil.
func New(reader repository.TableReader, store cache.Store, log *zap.Logger, m *metrics.Collector) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		reader:  reader,
		store:   store,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Load returns the cached dataset when it is still inside the window, otherwise it reads
// every source table again. Concurrent callers during a miss share one read.
func (l *Loader) Load(ctx context.Context) (*model.Dataset, error) {
	if ds, ok := l.cached(ctx, true); ok {
		return ds, nil
	}

	v, err, _ := l.group.Do(DatasetKey, func() (any, error) {
		// Another flight may have filled the cache since the lookup above.
		if ds, ok := l.cached(ctx, false); ok {
			return ds, nil
		}
		// Waiting callers share this read, so it must not end with the first caller.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		ds, err := l.fetch(fctx)
		if err != nil {
			return nil, err
		}
		if l.store != nil {
			if err := l.store.Set(fctx, DatasetKey, ds); err != nil {
				l.log.Warn("dataset_cache_store_failed", zap.Error(err))
			}
		}
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Dataset), nil
}

// Refresh drops the cached dataset so the next Load queries the database.
func (l *Loader) Refresh(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Delete(ctx, DatasetKey); err != nil {
		return fmt.Errorf("refresh dataset cache: %w", err)
	}
	l.log.Info("dataset_cache_cleared")
	return nil
}

// cached looks the dataset up. Only the first lookup of a Load records the outcome.
func (l *Loader) cached(ctx context.Context, record bool) (*model.Dataset, bool) {
	if l.store == nil {
		return nil, false
	}
	ds, ok, err := l.store.Get(ctx, DatasetKey)
	switch {
	case err != nil:
		// Cache failures degrade to a database read.
		if record {
			l.metrics.CacheError()
			l.log.Warn("dataset_cache_lookup_failed", zap.Error(err))
		}
		return nil, false
	case !ok:
		if record {
			l.metrics.CacheMiss()
		}
		return nil, false
	}
	if record {
		l.metrics.CacheHit()
	}
	return ds, true
}

func (l *Loader) fetch(ctx context.Context) (ds *model.Dataset, err error) {
	ctx, span := otel.Tracer("dmsreport/loader").Start(ctx, "loader.fetch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("dms.source_tables", len(model.SourceTables))),
	)
	start := time.Now()
	defer func() {
		l.metrics.ObserveLoad(time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
			l.log.Error("dataset_load_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		}
		span.End()
	}()

	tables := make(map[string]*table.Table, len(model.SourceTables))
	for _, src := range model.SourceTables {
		t, err := l.reader.ReadTable(ctx, src.Table)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrUnavailable, src.Table, err)
		}
		tables[src.Key] = t
	}

	docs, err := table.LeftJoin(tables[model.Documents], tables[model.DocumentTypes],
		model.ColDocType, model.ColTypeID, documentsJoin)
	if err != nil {
		return nil, fmt.Errorf("%w: join documents: %w", ErrUnavailable, err)
	}
	tables[model.Documents] = docs

	users, err := table.LeftJoin(tables[model.Users], tables[model.Departments],
		model.ColDepartmentID, model.ColDepartmentID, usersJoin)
	if err != nil {
		return nil, fmt.Errorf("%w: join users: %w", ErrUnavailable, err)
	}
	tables[model.Users] = users

	span.SetAttributes(
		attribute.Int("dms.documents", docs.Len()),
		attribute.Int("dms.users", users.Len()),
	)
	l.log.Info("dataset_loaded",
		zap.Int("documents", docs.Len()),
		zap.Int("users", users.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return &model.Dataset{Tables: tables, LoadedAt: l.now().UTC()}, nil
}
