package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The sale guard enforces, inside the sale transaction, that a batch of sale
// lines is only committed when every required consumable is in stock, and
// decrements stock atomically with the sale. It is the re-architected form of
// a database trigger: an explicit validate-then-decrement routine run under
// row locks before the bill details are written.

// SaleLine is one {product, quantity} pair of a sale.
type SaleLine struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	SubTotal  decimal.Decimal `json:"sub_total"`
}

// StockShortfall describes one consumable that cannot cover a sale.
type StockShortfall struct {
	ConsumableId int             `json:"consumable_id"`
	Name         string          `json:"name"`
	Available    decimal.Decimal `json:"available"`
	Required     decimal.Decimal `json:"required"`
}

// InsufficientStockError rejects a whole sale and lists every deficient
// consumable, not just the first.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (id %d): available %s, required %s",
			s.Name, s.ConsumableId, s.Available, s.Required))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// ProductError rejects a sale referencing a product that cannot be sold.
type ProductError struct {
	ProductId int
	Reason    string
}

func (e *ProductError) Error() string {
	return fmt.Sprintf("product %d: %s", e.ProductId, e.Reason)
}

type saleProductReader interface {
	ActiveProduct(productId int) (*Product, error)
	ActiveIngredients(productId int) ([]Ingredient, error)
}

type saleStockStore interface {
	LockConsumables(ids []int) (map[int]*Consumable, error)
	DecrementIfSufficient(id int, amount decimal.Decimal) (bool, error)
}

type saleGuard struct {
	products saleProductReader
	stock    saleStockStore
}

// saleRequirements is the outcome of aggregating one sale's lines: the
// required quantity per consumable, the lines with subtotals resolved, and
// the sale total.
type saleRequirements struct {
	required map[int]decimal.Decimal
	lines    []SaleLine
	total    decimal.Decimal
}

// aggregateRequirements computes the required quantity per consumable across
// ALL lines of the sale. A consumable used by several sold products
// accumulates before the stock check, so the check runs against the full
// requirement rather than per-line slices of it.
func (g *saleGuard) aggregateRequirements(lines []SaleLine) (*saleRequirements, error) {
	agg := &saleRequirements{
		required: map[int]decimal.Decimal{},
		total:    decimal.Zero,
	}

	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, &ProductError{ProductId: line.ProductId, Reason: "quantity must be positive"}
		}

		product, err := g.products.ActiveProduct(line.ProductId)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, &ProductError{ProductId: line.ProductId, Reason: "not found or inactive"}
		}

		ingredients, err := g.products.ActiveIngredients(line.ProductId)
		if err != nil {
			return nil, err
		}
		if len(ingredients) == 0 {
			return nil, &ProductError{ProductId: line.ProductId, Reason: "no active ingredient data"}
		}

		if line.SubTotal.IsZero() {
			line.SubTotal = product.Price.Mul(line.Quantity)
		}
		agg.total = agg.total.Add(line.SubTotal)
		agg.lines = append(agg.lines, line)

		for _, ing := range ingredients {
			amount := ing.QuantityPerUnit.Mul(line.Quantity)
			agg.required[ing.ConsumableId] = agg.required[ing.ConsumableId].Add(amount)
		}
	}

	return agg, nil
}

// reserve validates the aggregated requirement under row locks and decrements
// stock. On success it returns the consumables whose remaining stock fell
// below the low-stock threshold.
func (g *saleGuard) reserve(required map[int]decimal.Decimal) ([]StockShortfall, []lowStockEvent, error) {
	ids := make([]int, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	stocks, err := g.stock.LockConsumables(ids)
	if err != nil {
		return nil, nil, err
	}

	var shortfalls []StockShortfall
	for _, id := range ids {
		row, ok := stocks[id]
		if !ok {
			shortfalls = append(shortfalls, StockShortfall{
				ConsumableId: id,
				Name:         "unknown consumable",
				Available:    decimal.Zero,
				Required:     required[id],
			})
			continue
		}
		if row.Quantity.LessThan(required[id]) {
			shortfalls = append(shortfalls, StockShortfall{
				ConsumableId: id,
				Name:         row.Name,
				Available:    row.Quantity,
				Required:     required[id],
			})
		}
	}
	if len(shortfalls) > 0 {
		return shortfalls, nil, nil
	}

	var low []lowStockEvent
	for _, id := range ids {
		ok, err := g.stock.DecrementIfSufficient(id, required[id])
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			// Row locks make this unreachable in practice; treat it as a
			// shortfall so the transaction is rolled back, never partially
			// applied.
			row := stocks[id]
			return []StockShortfall{{
				ConsumableId: id,
				Name:         row.Name,
				Available:    row.Quantity,
				Required:     required[id],
			}}, nil, nil
		}

		remaining := stocks[id].Quantity.Sub(required[id])
		if remaining.LessThan(LowStockThreshold) {
			low = append(low, lowStockEvent{
				ConsumableId: id,
				Name:         stocks[id].Name,
				Remaining:    remaining,
			})
		}
	}

	return nil, low, nil
}

/* gorm-backed stores, bound to the sale transaction */

type gormSaleProductReader struct{ tx *gorm.DB }

func (g gormSaleProductReader) ActiveProduct(productId int) (*Product, error) {
	return activeProductForSale(g.tx, productId)
}

func (g gormSaleProductReader) ActiveIngredients(productId int) ([]Ingredient, error) {
	return activeIngredientsForProduct(g.tx, productId)
}

type gormSaleStockStore struct{ tx *gorm.DB }

func (g gormSaleStockStore) LockConsumables(ids []int) (map[int]*Consumable, error) {
	return lockConsumables(g.tx, ids)
}

func (g gormSaleStockStore) DecrementIfSufficient(id int, amount decimal.Decimal) (bool, error) {
	return decrementConsumableIfSufficient(g.tx, id, amount)
}

func txSaleGuard(tx *gorm.DB) *saleGuard {
	return &saleGuard{
		products: gormSaleProductReader{tx: tx},
		stock:    gormSaleStockStore{tx: tx},
	}
}
