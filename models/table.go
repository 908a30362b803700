package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"gorm.io/gorm"
)

// Table is a dining table. CurrentStatus is a derived field: the occupancy
// synchronizer keeps it Occupied exactly while at least one open bill
// references the table. Reserved is a manual override and is never written
// nor cleared by the synchronizer.
type Table struct {
	ID            string      `gorm:"primary_key;size:20" json:"id" binding:"required"`
	Zone          string      `gorm:"size:100" json:"zone"`
	CurrentStatus TableStatus `gorm:"type:enum('Available','Occupied','Reserved');default:'Available'" json:"current_status"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTable struct {
	ID   string `json:"id" binding:"required"`
	Zone string `json:"zone"`
}

func CreateTable(ctx context.Context, input *NewTable) (*Table, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}

	table := Table{
		ID:            input.ID,
		Zone:          input.Zone,
		CurrentStatus: TableStatusAvailable,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&table).Error; err != nil {
		if utils.IsDuplicateEntry(err) {
			return nil, errors.New("table id already exists")
		}
		return nil, err
	}
	return &table, nil
}

func GetTable(ctx context.Context, id string) (*Table, error) {
	return utils.FetchModel[Table](ctx, id)
}

func GetTables(ctx context.Context) ([]*Table, error) {
	return utils.FetchAllModels[Table](ctx)
}

// UpdateTableStatus is the manual override path (floor staff marking a table
// Reserved or releasing a reservation). Occupancy-derived transitions go
// through the synchronizer, never through here.
func UpdateTableStatus(ctx context.Context, id string, status TableStatus) (*Table, error) {
	table, err := utils.FetchModel[Table](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(table).Update("current_status", status).Error; err != nil {
		return nil, err
	}
	table.CurrentStatus = status
	return table, nil
}

/* store funcs used by the occupancy synchronizer (run inside the bill tx) */

func setTableStatus(tx *gorm.DB, tableId string, status TableStatus) error {
	return tx.Model(&Table{}).Where("id = ?", tableId).
		Update("current_status", status).Error
}

// clearTableReferenceOnBills detaches every bill still pointing at the table.
// Called once no open bill remains, so stale historical bills cannot keep a
// phantom association alive. Raw SQL so bill lifecycle hooks do not re-fire.
func clearTableReferenceOnBills(tx *gorm.DB, tableId string) error {
	return tx.Exec("UPDATE bills SET table_id = NULL WHERE table_id = ?", tableId).Error
}
