package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Bill lifecycle hooks. The occupancy synchronizer is invoked from here, not
// from application code: any write path that inserts or updates a bill
// through gorm keeps the referenced table's status in sync. Sync failures
// are handled inside the synchronizer (logged, swallowed) and can never fail
// the bill write.

func (b *Bill) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Bill created at cash register %d.", b.CashRegisterId)
	if err := SaveHistoryCreate(tx, b.ID, b, description); err != nil {
		return err
	}

	txTableSynchronizer(tx).BillInserted(billState{Status: b.CurrentStatus, TableId: b.TableId})

	return nil
}

func (b *Bill) BeforeUpdate(tx *gorm.DB) (err error) {
	// Receiver still holds the persisted state here; the new values travel
	// in the Updates map. Keep the old state for AfterUpdate.
	b.prevState = &billState{Status: b.CurrentStatus, TableId: b.TableId}

	description := "Bill updated."
	if tx.Statement.Changed("CurrentStatus") {
		if m, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			if v, ok := m["CurrentStatus"].(BillStatus); ok {
				description = fmt.Sprintf("Bill status changed from %s to %s.", b.CurrentStatus, v)
			}
		}
	}
	if err := SaveHistoryUpdate(tx, b.ID, b, description); err != nil {
		return err
	}

	return nil
}

func (b *Bill) AfterUpdate(tx *gorm.DB) (err error) {
	if b.ID == 0 {
		// batch update without a loaded instance; nothing to sync against
		return nil
	}

	prev := billState{Status: b.CurrentStatus, TableId: b.TableId}
	if b.prevState != nil {
		prev = *b.prevState
		b.prevState = nil
	}

	now := prev
	if m, ok := tx.Statement.Dest.(map[string]interface{}); ok {
		if v, ok := m["CurrentStatus"].(BillStatus); ok {
			now.Status = v
		}
		if v, exists := m["TableId"]; exists {
			switch t := v.(type) {
			case *string:
				now.TableId = t
			case string:
				now.TableId = &t
			case nil:
				now.TableId = nil
			}
		}
	}

	txTableSynchronizer(tx).BillUpdated(prev, now)

	return nil
}
