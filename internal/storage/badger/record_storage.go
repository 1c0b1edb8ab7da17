package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/models"
)

type recordStorage struct {
	store  *Store
	logger *common.Logger
}

// NewRecordStorage creates a RecordStore backed by BadgerHold. Records are
// keyed by symbol; a save replaces the previous fusion for that symbol.
func NewRecordStorage(store *Store, logger *common.Logger) *recordStorage {
	return &recordStorage{store: store, logger: logger}
}

func (s *recordStorage) GetRecord(_ context.Context, symbol string) (*models.StandardizedRecord, error) {
	var record models.StandardizedRecord
	err := s.store.db.Get(symbol, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("record for '%s' not found", symbol)
		}
		return nil, fmt.Errorf("failed to get record for '%s': %w", symbol, err)
	}
	return &record, nil
}

func (s *recordStorage) SaveRecord(_ context.Context, record *models.StandardizedRecord) error {
	if record == nil || record.Symbol == "" {
		return fmt.Errorf("cannot save record without a symbol")
	}
	if err := s.store.db.Upsert(record.Symbol, record); err != nil {
		return fmt.Errorf("failed to save record for '%s': %w", record.Symbol, err)
	}
	s.logger.Debug().Str("symbol", record.Symbol).Msg("Record saved")
	return nil
}

func (s *recordStorage) DeleteRecord(_ context.Context, symbol string) error {
	err := s.store.db.Delete(symbol, models.StandardizedRecord{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete record for '%s': %w", symbol, err)
	}
	s.logger.Debug().Str("symbol", symbol).Msg("Record deleted")
	return nil
}

func (s *recordStorage) ListSymbols(_ context.Context) ([]string, error) {
	var records []models.StandardizedRecord
	if err := s.store.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	symbols := make([]string, len(records))
	for i, r := range records {
		symbols[i] = r.Symbol
	}
	sort.Strings(symbols)
	return symbols, nil
}
