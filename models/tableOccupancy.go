package models

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
)

// The table-occupancy synchronizer keeps Table.CurrentStatus consistent with
// the set of open bills referencing the table. It is never called by
// application code directly; the bill lifecycle hooks in modelHooks.go invoke
// it on every insert and update.
//
// Every failure in here is logged and swallowed: occupancy is a best-effort
// derived cache and must never abort the bill write that triggered it.

type billCounter interface {
	CountOpenByTable(tableId string) (int64, error)
}

type tableStore interface {
	SetStatus(tableId string, status TableStatus) error
	ClearTableReferenceOnBills(tableId string) error
}

// billState is the slice of a bill the synchronizer cares about.
type billState struct {
	Status  BillStatus
	TableId *string
}

type tableSynchronizer struct {
	bills  billCounter
	tables tableStore
	logger *logrus.Logger
}

func newTableSynchronizer(bills billCounter, tables tableStore, logger *logrus.Logger) *tableSynchronizer {
	return &tableSynchronizer{bills: bills, tables: tables, logger: logger}
}

// BillInserted marks the table occupied when an open bill lands on it.
func (s *tableSynchronizer) BillInserted(now billState) {
	if now.TableId == nil || now.Status != BillStatusOpen {
		return
	}
	if err := s.tables.SetStatus(*now.TableId, TableStatusOccupied); err != nil {
		s.swallow("BillInserted", *now.TableId, err)
	}
}

// BillUpdated re-derives the table status after a bill changed.
func (s *tableSynchronizer) BillUpdated(prev billState, now billState) {
	// A bill reopening on a table occupies it; nothing else to check.
	if now.Status == BillStatusOpen && prev.Status != BillStatusOpen && now.TableId != nil {
		if err := s.tables.SetStatus(*now.TableId, TableStatusOccupied); err != nil {
			s.swallow("BillUpdated", *now.TableId, err)
		}
		return
	}

	tableId := prev.TableId
	if tableId == nil {
		tableId = now.TableId
	}
	if tableId != nil {
		count, err := s.bills.CountOpenByTable(*tableId)
		if err != nil {
			s.swallow("BillUpdated", *tableId, err)
			return
		}
		if count == 0 {
			if err := s.tables.SetStatus(*tableId, TableStatusAvailable); err != nil {
				s.swallow("BillUpdated", *tableId, err)
				return
			}
			if err := s.tables.ClearTableReferenceOnBills(*tableId); err != nil {
				s.swallow("BillUpdated", *tableId, err)
				return
			}
		}
	}

	// A still-open bill that moved to (or gained) a table occupies it.
	if now.Status == BillStatusOpen && now.TableId != nil && (tableId == nil || *now.TableId != *tableId) {
		if err := s.tables.SetStatus(*now.TableId, TableStatusOccupied); err != nil {
			s.swallow("BillUpdated", *now.TableId, err)
		}
	}
}

func (s *tableSynchronizer) swallow(funcName string, tableId string, err error) {
	config.TableSyncFailuresTotal.Inc()
	config.LogError(s.logger, "tableOccupancy.go", funcName, "table occupancy sync failed", tableId, err)
}

/* gorm-backed stores, bound to the bill write's transaction */

type gormBillCounter struct{ tx *gorm.DB }

func (g gormBillCounter) CountOpenByTable(tableId string) (int64, error) {
	return CountOpenBillsByTable(g.tx, tableId)
}

type gormTableStore struct{ tx *gorm.DB }

func (g gormTableStore) SetStatus(tableId string, status TableStatus) error {
	return setTableStatus(g.tx, tableId, status)
}

func (g gormTableStore) ClearTableReferenceOnBills(tableId string) error {
	return clearTableReferenceOnBills(g.tx, tableId)
}

func txTableSynchronizer(tx *gorm.DB) *tableSynchronizer {
	return newTableSynchronizer(gormBillCounter{tx: tx}, gormTableStore{tx: tx}, config.GetLogger())
}
