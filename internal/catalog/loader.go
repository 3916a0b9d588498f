package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"weapon-quiz-service/internal/domain"
)

// RecordSource fetches raw weapon records (HTTP API, database mirror, fixtures).
// Implementations return domain.ErrSourceUnavailable or domain.ErrMalformedRecord
// (wrapped) when the batch as a whole cannot be obtained.
type RecordSource interface {
	FetchRecords(ctx context.Context, limit int) ([]Record, error)
}

// Loader turns raw records into quiz-ready items.
type Loader struct {
	source RecordSource
	opts   Options
	log    *zap.Logger
}

func NewLoader(source RecordSource, opts Options, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{source: source, opts: opts, log: log}
}

// Load fetches at most limit records and normalizes them. Individual
// defective records are filtered out; only source-level failures are returned.
func (l *Loader) Load(ctx context.Context, limit int) ([]domain.Item, error) {
	records, err := l.source.FetchRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	items := Normalize(records, l.opts)
	l.log.Debug("catalog loaded",
		zap.Int("records", len(records)),
		zap.Int("items", len(items)),
		zap.Int("dropped", len(records)-len(items)),
		zap.String("mode", string(l.opts.Mode)),
	)
	return items, nil
}

// Variant identifies the normalization settings of this loader for cache keys.
func (l *Loader) Variant() string {
	return l.opts.Variant()
}

// StaticSource serves a fixed slice of records (useful for tests/demos).
type StaticSource struct {
	records []Record
}

func NewStaticSource(records []Record) *StaticSource {
	return &StaticSource{records: records}
}

func (s *StaticSource) FetchRecords(_ context.Context, limit int) ([]Record, error) {
	out := s.records
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return append([]Record(nil), out...), nil
}
