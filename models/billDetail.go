package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/shopspring/decimal"
)

// BillDetail is one recorded sale line. Immutable once created: corrections
// happen through new bills, never by editing sold lines.
type BillDetail struct {
	ID        int             `gorm:"primary_key" json:"id"`
	BillId    int             `gorm:"index;not null" json:"bill_id"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	SubTotal  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"sub_total"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewSale struct {
	BillId int        `json:"bill_id" binding:"required"`
	Lines  []SaleLine `json:"lines" binding:"required,min=1,dive"`
}

// RecordSale is the single entry point for recording a product sale on a
// bill. It runs the whole sale in one transaction: aggregate the consumable
// requirement across all lines, validate it under row locks, decrement
// stock, write the bill details and update the bill total. Any shortfall
// rejects the entire sale; nothing is written and stock is untouched.
//
// Callers receive *InsufficientStockError or *ProductError for recoverable
// rejections; everything else is a persistence failure after rollback.
func RecordSale(ctx context.Context, input *NewSale) (*Bill, error) {
	logger := config.GetLogger()

	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}

	bill, err := utils.FetchModel[Bill](ctx, input.BillId)
	if err != nil {
		return nil, errors.New("bill not found")
	}
	if bill.CurrentStatus != BillStatusOpen {
		return nil, fmt.Errorf("bill %d is %s; sales can only be recorded on open bills", bill.ID, bill.CurrentStatus)
	}

	// Coarse per-register lock; row locks below are the correctness
	// mechanism (see utils.SaleLock).
	release, err := utils.SaleLock(ctx, bill.CashRegisterId, "billDetail.go", "RecordSale")
	if err != nil {
		return nil, err
	}
	defer release()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	guard := txSaleGuard(tx)

	agg, err := guard.aggregateRequirements(input.Lines)
	if err != nil {
		tx.Rollback()
		var productErr *ProductError
		if errors.As(err, &productErr) {
			config.SalesRejectedTotal.WithLabelValues("product").Inc()
			return nil, err
		}
		config.LogError(logger, "billDetail.go", "RecordSale", "aggregation failed", input.BillId, err)
		return nil, err
	}

	shortfalls, lowStock, err := guard.reserve(agg.required)
	if err != nil {
		tx.Rollback()
		config.SalesRejectedTotal.WithLabelValues("persistence").Inc()
		config.LogError(logger, "billDetail.go", "RecordSale", "stock reservation failed", map[string]any{
			"bill_id":  input.BillId,
			"required": agg.required,
		}, err)
		return nil, err
	}
	if len(shortfalls) > 0 {
		tx.Rollback()
		config.SalesRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, &InsufficientStockError{Shortfalls: shortfalls}
	}

	details := make([]BillDetail, 0, len(agg.lines))
	for _, line := range agg.lines {
		details = append(details, BillDetail{
			BillId:    bill.ID,
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
			SubTotal:  line.SubTotal,
		})
	}
	if err := tx.Create(&details).Error; err != nil {
		tx.Rollback()
		config.SalesRejectedTotal.WithLabelValues("persistence").Inc()
		config.LogError(logger, "billDetail.go", "RecordSale", "bill detail insert failed", input.BillId, err)
		return nil, err
	}

	// Relative update: the bill was read outside this transaction, so adding
	// to the in-memory total would lose a concurrent sale's increment.
	if err := tx.Exec("UPDATE bills SET total = total + ? WHERE id = ?", agg.total, bill.ID).Error; err != nil {
		tx.Rollback()
		config.SalesRejectedTotal.WithLabelValues("persistence").Inc()
		config.LogError(logger, "billDetail.go", "RecordSale", "bill total update failed", input.BillId, err)
		return nil, err
	}

	for _, event := range lowStock {
		if err := enqueueLowStockNotification(tx, ctx, event); err != nil {
			tx.Rollback()
			config.SalesRejectedTotal.WithLabelValues("persistence").Inc()
			config.LogError(logger, "billDetail.go", "RecordSale", "low-stock enqueue failed", event.ConsumableId, err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		config.SalesRejectedTotal.WithLabelValues("persistence").Inc()
		return nil, err
	}

	config.SalesRecordedTotal.Inc()
	for range lowStock {
		config.LowStockEventsTotal.Inc()
	}

	return utils.FetchModel[Bill](ctx, bill.ID, "Details")
}

func GetBillDetails(ctx context.Context, billId int) ([]*BillDetail, error) {
	db := config.GetDB()
	var details []*BillDetail
	if err := db.WithContext(ctx).Where("bill_id = ?", billId).Find(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}
