package models

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeBillCounter struct {
	counts map[string]int64
	err    error
}

func (f fakeBillCounter) CountOpenByTable(tableId string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[tableId], nil
}

type fakeTableStore struct {
	statuses map[string]TableStatus
	cleared  []string
	setErr   error
}

func (f *fakeTableStore) SetStatus(tableId string, status TableStatus) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.statuses == nil {
		f.statuses = map[string]TableStatus{}
	}
	f.statuses[tableId] = status
	return nil
}

func (f *fakeTableStore) ClearTableReferenceOnBills(tableId string) error {
	f.cleared = append(f.cleared, tableId)
	return nil
}

func strPtr(s string) *string { return &s }

func testSynchronizer(bills billCounter, tables tableStore) *tableSynchronizer {
	return newTableSynchronizer(bills, tables, logrus.New())
}

func TestBillInsertedOccupiesTable(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{}, tables)

	s.BillInserted(billState{Status: BillStatusOpen, TableId: strPtr("T-01")})

	assert.Equal(t, TableStatusOccupied, tables.statuses["T-01"])
}

func TestBillInsertedIgnoresBillWithoutTable(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{}, tables)

	s.BillInserted(billState{Status: BillStatusOpen})

	assert.Empty(t, tables.statuses)
}

func TestBillInsertedIgnoresClosedBill(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{}, tables)

	s.BillInserted(billState{Status: BillStatusClosed, TableId: strPtr("T-01")})

	assert.Empty(t, tables.statuses)
}

func TestBillUpdatedReleasesTableWhenLastOpenBillCloses(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{counts: map[string]int64{"T-01": 0}}, tables)

	s.BillUpdated(
		billState{Status: BillStatusOpen, TableId: strPtr("T-01")},
		billState{Status: BillStatusClosed, TableId: strPtr("T-01")},
	)

	assert.Equal(t, TableStatusAvailable, tables.statuses["T-01"])
	assert.Equal(t, []string{"T-01"}, tables.cleared)
}

func TestBillUpdatedKeepsTableOccupiedWhileOtherOpenBillsRemain(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{counts: map[string]int64{"T-01": 2}}, tables)

	s.BillUpdated(
		billState{Status: BillStatusOpen, TableId: strPtr("T-01")},
		billState{Status: BillStatusClosed, TableId: strPtr("T-01")},
	)

	assert.Empty(t, tables.statuses)
	assert.Empty(t, tables.cleared)
}

func TestBillUpdatedCancellationReleasesTable(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{counts: map[string]int64{"T-02": 0}}, tables)

	s.BillUpdated(
		billState{Status: BillStatusOpen, TableId: strPtr("T-02")},
		billState{Status: BillStatusCancelled, TableId: strPtr("T-02")},
	)

	assert.Equal(t, TableStatusAvailable, tables.statuses["T-02"])
}

func TestBillUpdatedReopeningOccupiesTable(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{}, tables)

	s.BillUpdated(
		billState{Status: BillStatusClosed, TableId: strPtr("T-01")},
		billState{Status: BillStatusOpen, TableId: strPtr("T-01")},
	)

	assert.Equal(t, TableStatusOccupied, tables.statuses["T-01"])
}

func TestBillUpdatedMoveReleasesOldTableAndOccupiesNew(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{counts: map[string]int64{"T-01": 0}}, tables)

	s.BillUpdated(
		billState{Status: BillStatusOpen, TableId: strPtr("T-01")},
		billState{Status: BillStatusOpen, TableId: strPtr("T-02")},
	)

	assert.Equal(t, TableStatusAvailable, tables.statuses["T-01"])
	assert.Equal(t, TableStatusOccupied, tables.statuses["T-02"])
}

func TestBillUpdatedGainingTableOccupiesIt(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{}, tables)

	s.BillUpdated(
		billState{Status: BillStatusOpen},
		billState{Status: BillStatusOpen, TableId: strPtr("T-03")},
	)

	assert.Equal(t, TableStatusOccupied, tables.statuses["T-03"])
}

func TestBillUpdatedWithoutTableIsNoop(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{}, tables)

	s.BillUpdated(
		billState{Status: BillStatusOpen},
		billState{Status: BillStatusClosed},
	)

	assert.Empty(t, tables.statuses)
	assert.Empty(t, tables.cleared)
}

// The sync derives table state from the open-bill count, so re-applying the
// same event must land on the same state, not toggle it.
func TestBillUpdatedAppliedTwiceYieldsSameState(t *testing.T) {
	tables := &fakeTableStore{statuses: map[string]TableStatus{"T-01": TableStatusOccupied}}
	s := testSynchronizer(fakeBillCounter{counts: map[string]int64{"T-01": 0}}, tables)

	prev := billState{Status: BillStatusOpen, TableId: strPtr("T-01")}
	now := billState{Status: BillStatusClosed, TableId: strPtr("T-01")}

	s.BillUpdated(prev, now)
	first := tables.statuses["T-01"]

	s.BillUpdated(prev, now)

	assert.Equal(t, TableStatusAvailable, first)
	assert.Equal(t, first, tables.statuses["T-01"])
}

func TestBillInsertedAppliedTwiceYieldsSameState(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{counts: map[string]int64{"T-01": 1}}, tables)

	state := billState{Status: BillStatusOpen, TableId: strPtr("T-01")}
	s.BillInserted(state)
	s.BillInserted(state)

	assert.Equal(t, TableStatusOccupied, tables.statuses["T-01"])
	assert.Empty(t, tables.cleared)
}

func TestBillUpdatedSwallowsStoreFailure(t *testing.T) {
	tables := &fakeTableStore{setErr: errors.New("table gone")}
	s := testSynchronizer(fakeBillCounter{counts: map[string]int64{"T-01": 0}}, tables)

	// Must not panic or propagate; occupancy sync is best effort.
	s.BillUpdated(
		billState{Status: BillStatusOpen, TableId: strPtr("T-01")},
		billState{Status: BillStatusClosed, TableId: strPtr("T-01")},
	)

	assert.Empty(t, tables.cleared)
}

func TestBillUpdatedSwallowsCountFailure(t *testing.T) {
	tables := &fakeTableStore{}
	s := testSynchronizer(fakeBillCounter{err: errors.New("db down")}, tables)

	s.BillUpdated(
		billState{Status: BillStatusOpen, TableId: strPtr("T-01")},
		billState{Status: BillStatusClosed, TableId: strPtr("T-01")},
	)

	assert.Empty(t, tables.statuses)
}
