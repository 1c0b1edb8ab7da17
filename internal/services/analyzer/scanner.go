package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
)

// Scan analyzes a batch of symbols with bounded concurrency. A symbol that
// fails is recorded in the result and the rest of the batch carries on; only
// context cancellation stops the scan.
func (s *Service) Scan(ctx context.Context, symbols []string, force bool) (*models.ScanResult, error) {
	result := &models.ScanResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	if len(symbols) == 0 {
		result.CompletedAt = time.Now().UTC()
		return result, nil
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("symbols", len(symbols)).
		Int("concurrency", s.concurrency).
		Msg("starting scan")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			report, err := s.Analyze(gctx, symbol, force)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				mu.Lock()
				result.Failures = append(result.Failures, models.ScanFailure{
					Symbol: symbol,
					Reason: failureReason(err),
				})
				mu.Unlock()
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("scan symbol failed")
				return nil
			}
			mu.Lock()
			result.Reports = append(result.Reports, report)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan aborted: %w", err)
	}

	sort.Slice(result.Reports, func(i, j int) bool {
		return result.Reports[i].Symbol < result.Reports[j].Symbol
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Symbol < result.Failures[j].Symbol
	})
	result.CompletedAt = time.Now().UTC()

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("analyzed", len(result.Reports)).
		Int("failed", len(result.Failures)).
		Msg("scan complete")
	return result, nil
}

// failureReason folds well-known error classes into stable reason strings.
func failureReason(err error) string {
	switch {
	case errors.Is(err, interfaces.ErrSymbolNotFound):
		return "symbol not found"
	case interfaces.IsTransient(err):
		return "transient provider failure"
	default:
		return err.Error()
	}
}
