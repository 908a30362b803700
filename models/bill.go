package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bill is an open tab at the POS. It is created Open, optionally bound to a
// table, and later transitions to Closed or Cancelled. Occupancy of the
// referenced table is derived from open bills by the lifecycle hooks in
// modelHooks.go.
type Bill struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BillNumber     string          `gorm:"index;size:255" json:"bill_number"`
	CashRegisterId int             `gorm:"index;not null" json:"cash_register_id" binding:"required"`
	TableId        *string         `gorm:"index;size:20;default:null" json:"table_id"`
	Customer       string          `gorm:"size:100" json:"customer"`
	BillDate       time.Time       `gorm:"not null" json:"bill_date"`
	Total          decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total"`
	CurrentStatus  BillStatus      `gorm:"type:enum('Open','Closed','Cancelled');default:'Open'" json:"current_status"`
	Details        []BillDetail    `gorm:"foreignKey:BillId" json:"details,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// snapshot of the persisted state, captured by BeforeUpdate for the
	// occupancy sync in AfterUpdate; gorm and json ignore unexported fields
	prevState *billState
}

// CashRegisterId may be omitted when the request context already carries the
// terminal's register (x-cash-register-id header).
type NewBill struct {
	CashRegisterId int       `json:"cash_register_id"`
	TableId        *string   `json:"table_id"`
	Customer       string    `json:"customer"`
	BillDate       time.Time `json:"bill_date"`
}

type UpdateBillInput struct {
	CurrentStatus *BillStatus `json:"current_status"`
	TableId       *string     `json:"table_id"`
	Customer      *string     `json:"customer"`
}

func (input NewBill) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[CashRegister](ctx, input.CashRegisterId); err != nil {
		return errors.New("cash register not found")
	}
	if input.TableId != nil {
		if err := utils.ValidateResourceId[Table](ctx, *input.TableId); err != nil {
			return errors.New("table not found")
		}
	}
	return nil
}

func CreateBill(ctx context.Context, input *NewBill) (*Bill, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if input.CashRegisterId == 0 {
		if registerId, ok := utils.GetCashRegisterIdFromContext(ctx); ok {
			input.CashRegisterId = registerId
		}
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	billDate := input.BillDate
	if billDate.IsZero() {
		billDate = time.Now().UTC()
	}

	bill := Bill{
		CashRegisterId: input.CashRegisterId,
		TableId:        input.TableId,
		Customer:       input.Customer,
		BillDate:       billDate,
		CurrentStatus:  BillStatusOpen,
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&bill).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Bill numbers follow the auto-increment id; assigned inside the same tx.
	bill.BillNumber = fmt.Sprintf("B-%06d", bill.ID)
	if err := tx.Exec("UPDATE bills SET bill_number = ? WHERE id = ?", bill.BillNumber, bill.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &bill, nil
}

func UpdateBill(ctx context.Context, id int, input *UpdateBillInput) (*Bill, error) {
	bill, err := utils.FetchModel[Bill](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.CurrentStatus != nil {
		if bill.CurrentStatus != BillStatusOpen && *input.CurrentStatus != bill.CurrentStatus {
			return nil, fmt.Errorf("bill %d is already %s", id, bill.CurrentStatus)
		}
		updates["CurrentStatus"] = *input.CurrentStatus
	}
	if input.TableId != nil {
		if err := utils.ValidateResourceId[Table](ctx, *input.TableId); err != nil {
			return nil, errors.New("table not found")
		}
		updates["TableId"] = *input.TableId
	}
	if input.Customer != nil {
		updates["Customer"] = *input.Customer
	}
	if len(updates) == 0 {
		return bill, nil
	}

	db := config.GetDB()
	tx := db.Begin()

	// Model(bill) keeps the previous persisted state on the hook receiver
	// while the new values travel in the updates map (see modelHooks.go).
	if err := tx.WithContext(ctx).Model(bill).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return utils.FetchModel[Bill](ctx, id, "Details")
}

func GetBill(ctx context.Context, id int) (*Bill, error) {
	return utils.FetchModel[Bill](ctx, id, "Details")
}

func GetBills(ctx context.Context) ([]*Bill, error) {
	return utils.FetchAllModels[Bill](ctx)
}

// CountOpenBillsByTable counts bills currently Open for a table, using the
// caller's transaction so uncommitted state is visible.
func CountOpenBillsByTable(tx *gorm.DB, tableId string) (int64, error) {
	var count int64
	err := tx.Model(&Bill{}).
		Where("table_id = ? AND current_status = ?", tableId, BillStatusOpen).
		Count(&count).Error
	return count, err
}
