package index

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/homegrid-io/comps/internal/domain"
)

// Failure records one property that could not be indexed.
type Failure struct {
	ID  uint64
	Err error
}

// Report summarizes a batch indexing run.
type Report struct {
	Indexed  int
	Failures []Failure
}

// IndexBatch indexes records with bounded concurrency. One bad record never
// stops the batch; every failure lands in the report.
func (s *Service) IndexBatch(ctx context.Context, records []*domain.PropertyRecord, workers int) Report {
	if workers <= 0 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)

	sem := make(chan struct{}, workers)
	for _, rec := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(rec *domain.PropertyRecord) {
			defer func() { <-sem; wg.Done() }()

			err := s.IndexProperty(ctx, rec)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, Failure{ID: rec.ID, Err: err})
				s.logger.Error("Failed to index property",
					zap.Uint64("id", rec.ID),
					zap.Error(err))
				return
			}
			report.Indexed++
		}(rec)
	}
	wg.Wait()

	s.logger.Info("Batch indexing finished",
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", len(report.Failures)))
	return report
}
