package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LowStockThreshold is the stock level below which a low-stock notification
// fires after a decrement.
var LowStockThreshold = decimal.NewFromInt(5)

// Consumable is a raw-material stock item (sugar, milk). Quantity is only
// decremented by the sale guard and topped up by restocking; it never goes
// negative.
type Consumable struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Name            string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitMeasurement UnitMeasurement `gorm:"size:10;not null" json:"unit_measurement" binding:"required"`
	Cost            decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"cost"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewConsumable struct {
	Name            string          `json:"name" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitMeasurement UnitMeasurement `json:"unit_measurement" binding:"required"`
	Cost            decimal.Decimal `json:"cost"`
}

func CreateConsumable(ctx context.Context, input *NewConsumable) (*Consumable, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if input.Quantity.IsNegative() {
		return nil, errors.New("quantity cannot be negative")
	}

	consumable := Consumable{
		Name:            input.Name,
		Quantity:        input.Quantity,
		UnitMeasurement: input.UnitMeasurement,
		Cost:            input.Cost,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&consumable).Error; err != nil {
		return nil, err
	}
	return &consumable, nil
}

func GetConsumable(ctx context.Context, id int) (*Consumable, error) {
	return utils.FetchModel[Consumable](ctx, id)
}

func GetConsumables(ctx context.Context) ([]*Consumable, error) {
	return utils.FetchAllModels[Consumable](ctx)
}

// GetConsumableQuantity returns the current stock on hand.
func GetConsumableQuantity(ctx context.Context, id int) (decimal.Decimal, error) {
	consumable, err := utils.FetchModel[Consumable](ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return consumable.Quantity, nil
}

// RestockConsumable adds delivered stock.
func RestockConsumable(ctx context.Context, id int, quantity decimal.Decimal) (*Consumable, error) {
	if !quantity.IsPositive() {
		return nil, errors.New("restock quantity must be positive")
	}
	if err := utils.ValidateResourceId[Consumable](ctx, id); err != nil {
		return nil, errors.New("consumable not found")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).
		Exec("UPDATE consumables SET quantity = quantity + ? WHERE id = ?", quantity, id).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[Consumable](ctx, id)
}

/* store funcs used by the sale guard (run inside the sale tx) */

// lockConsumables fetches the given consumables under SELECT ... FOR UPDATE
// so two concurrent sales cannot both pass the stock check on the same row.
func lockConsumables(tx *gorm.DB, ids []int) (map[int]*Consumable, error) {
	var rows []*Consumable
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byId := make(map[int]*Consumable, len(rows))
	for _, row := range rows {
		byId[row.ID] = row
	}
	return byId, nil
}

// decrementConsumableIfSufficient performs the conditional decrement. The
// WHERE guard plus the affected-row check is the last line of defense against
// driving stock negative, on top of the row locks taken by lockConsumables.
func decrementConsumableIfSufficient(tx *gorm.DB, id int, amount decimal.Decimal) (bool, error) {
	result := tx.Exec(
		"UPDATE consumables SET quantity = quantity - ? WHERE id = ? AND quantity >= ?",
		amount, id, amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}
