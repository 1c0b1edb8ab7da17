// Package storage provides the top-level StorageManager coordinating the two
// storage areas: fused records and analysis reports.
package storage

import (
	"fmt"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over two BadgerHold areas.
type Manager struct {
	recordsDB *badger.Store
	reportsDB *badger.Store
	records   interfaces.RecordStore
	reports   interfaces.ReportStore
	logger    *common.Logger
}

// NewManager opens both storage areas from config.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	recordsDB, err := badger.NewStore(logger, config.Storage.Records.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records store: %w", err)
	}

	reportsDB, err := badger.NewStore(logger, config.Storage.Reports.Path)
	if err != nil {
		recordsDB.Close()
		return nil, fmt.Errorf("failed to open reports store: %w", err)
	}

	logger.Info().
		Str("records", config.Storage.Records.Path).
		Str("reports", config.Storage.Reports.Path).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		recordsDB: recordsDB,
		reportsDB: reportsDB,
		records:   badger.NewRecordStorage(recordsDB, logger),
		reports:   badger.NewReportStorage(reportsDB, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) RecordStore() interfaces.RecordStore {
	return m.records
}

func (m *Manager) ReportStore() interfaces.ReportStore {
	return m.reports
}

func (m *Manager) Close() error {
	var firstErr error
	if err := m.recordsDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.reportsDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
