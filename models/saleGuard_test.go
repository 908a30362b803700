package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductReader struct {
	products    map[int]*Product
	ingredients map[int][]Ingredient
}

func (f fakeProductReader) ActiveProduct(productId int) (*Product, error) {
	return f.products[productId], nil
}

func (f fakeProductReader) ActiveIngredients(productId int) ([]Ingredient, error) {
	return f.ingredients[productId], nil
}

type fakeStockStore struct {
	stock       map[int]*Consumable
	decremented map[int]decimal.Decimal
	lockErr     error
	denyId      int
}

func (f *fakeStockStore) LockConsumables(ids []int) (map[int]*Consumable, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	out := map[int]*Consumable{}
	for _, id := range ids {
		if row, ok := f.stock[id]; ok {
			out[id] = row
		}
	}
	return out, nil
}

func (f *fakeStockStore) DecrementIfSufficient(id int, amount decimal.Decimal) (bool, error) {
	if f.denyId == id {
		return false, nil
	}
	if f.decremented == nil {
		f.decremented = map[int]decimal.Decimal{}
	}
	f.decremented[id] = f.decremented[id].Add(amount)
	return true, nil
}

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

// Latte (product 1) and espresso (product 2) share beans (consumable 10);
// the latte also takes milk (consumable 11).
func cafeProducts() fakeProductReader {
	return fakeProductReader{
		products: map[int]*Product{
			1: {ID: 1, Name: "Latte", Price: dec("3.80")},
			2: {ID: 2, Name: "Espresso", Price: dec("2.50")},
		},
		ingredients: map[int][]Ingredient{
			1: {
				{ConsumableId: 10, QuantityPerUnit: dec("18")},
				{ConsumableId: 11, QuantityPerUnit: dec("200")},
			},
			2: {
				{ConsumableId: 10, QuantityPerUnit: dec("18")},
			},
		},
	}
}

func TestAggregateRequirementsSumsSharedConsumableAcrossLines(t *testing.T) {
	g := &saleGuard{products: cafeProducts(), stock: &fakeStockStore{}}

	agg, err := g.aggregateRequirements([]SaleLine{
		{ProductId: 1, Quantity: dec("2")},
		{ProductId: 2, Quantity: dec("3")},
	})
	require.NoError(t, err)

	// 2 lattes + 3 espressos: beans 2*18 + 3*18, milk 2*200.
	assert.True(t, agg.required[10].Equal(dec("90")), "beans: %s", agg.required[10])
	assert.True(t, agg.required[11].Equal(dec("400")), "milk: %s", agg.required[11])
	assert.True(t, agg.total.Equal(dec("15.10")), "total: %s", agg.total)
	require.Len(t, agg.lines, 2)
	assert.True(t, agg.lines[0].SubTotal.Equal(dec("7.60")))
	assert.True(t, agg.lines[1].SubTotal.Equal(dec("7.50")))
}

func TestAggregateRequirementsKeepsProvidedSubTotal(t *testing.T) {
	g := &saleGuard{products: cafeProducts(), stock: &fakeStockStore{}}

	agg, err := g.aggregateRequirements([]SaleLine{
		{ProductId: 2, Quantity: dec("1"), SubTotal: dec("2.00")},
	})
	require.NoError(t, err)

	assert.True(t, agg.lines[0].SubTotal.Equal(dec("2.00")))
	assert.True(t, agg.total.Equal(dec("2.00")))
}

func TestAggregateRequirementsRejectsNonPositiveQuantity(t *testing.T) {
	g := &saleGuard{products: cafeProducts(), stock: &fakeStockStore{}}

	_, err := g.aggregateRequirements([]SaleLine{{ProductId: 1, Quantity: dec("0")}})

	var productErr *ProductError
	require.ErrorAs(t, err, &productErr)
	assert.Equal(t, 1, productErr.ProductId)
}

func TestAggregateRequirementsRejectsUnknownProduct(t *testing.T) {
	g := &saleGuard{products: cafeProducts(), stock: &fakeStockStore{}}

	_, err := g.aggregateRequirements([]SaleLine{{ProductId: 99, Quantity: dec("1")}})

	var productErr *ProductError
	require.ErrorAs(t, err, &productErr)
	assert.Equal(t, 99, productErr.ProductId)
}

func TestAggregateRequirementsRejectsProductWithoutIngredients(t *testing.T) {
	reader := cafeProducts()
	reader.products[3] = &Product{ID: 3, Name: "Mystery", Price: dec("1.00")}
	g := &saleGuard{products: reader, stock: &fakeStockStore{}}

	_, err := g.aggregateRequirements([]SaleLine{{ProductId: 3, Quantity: dec("1")}})

	var productErr *ProductError
	require.ErrorAs(t, err, &productErr)
	assert.Equal(t, "no active ingredient data", productErr.Reason)
}

func TestReserveListsEveryShortfall(t *testing.T) {
	stock := &fakeStockStore{stock: map[int]*Consumable{
		10: {ID: 10, Name: "Espresso beans", Quantity: dec("30")},
		11: {ID: 11, Name: "Whole milk", Quantity: dec("100")},
	}}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	shortfalls, low, err := g.reserve(map[int]decimal.Decimal{
		10: dec("90"),
		11: dec("400"),
	})
	require.NoError(t, err)

	require.Len(t, shortfalls, 2)
	assert.Equal(t, "Espresso beans", shortfalls[0].Name)
	assert.True(t, shortfalls[0].Available.Equal(dec("30")))
	assert.True(t, shortfalls[0].Required.Equal(dec("90")))
	assert.Equal(t, "Whole milk", shortfalls[1].Name)
	assert.Empty(t, low)
	assert.Empty(t, stock.decremented, "nothing may be decremented on rejection")
}

func TestReserveRejectsWhenOneOfManyIsShort(t *testing.T) {
	stock := &fakeStockStore{stock: map[int]*Consumable{
		10: {ID: 10, Name: "Espresso beans", Quantity: dec("500")},
		11: {ID: 11, Name: "Whole milk", Quantity: dec("100")},
	}}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	shortfalls, _, err := g.reserve(map[int]decimal.Decimal{
		10: dec("90"),
		11: dec("400"),
	})
	require.NoError(t, err)

	require.Len(t, shortfalls, 1)
	assert.Equal(t, 11, shortfalls[0].ConsumableId)
	assert.Empty(t, stock.decremented)
}

func TestReserveUnknownConsumableIsAShortfall(t *testing.T) {
	stock := &fakeStockStore{stock: map[int]*Consumable{}}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	shortfalls, _, err := g.reserve(map[int]decimal.Decimal{10: dec("18")})
	require.NoError(t, err)

	require.Len(t, shortfalls, 1)
	assert.Equal(t, "unknown consumable", shortfalls[0].Name)
	assert.True(t, shortfalls[0].Available.IsZero())
}

func TestReserveDecrementsExactlyTheRequirement(t *testing.T) {
	stock := &fakeStockStore{stock: map[int]*Consumable{
		10: {ID: 10, Name: "Espresso beans", Quantity: dec("500")},
		11: {ID: 11, Name: "Whole milk", Quantity: dec("1000")},
	}}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	shortfalls, low, err := g.reserve(map[int]decimal.Decimal{
		10: dec("90"),
		11: dec("400"),
	})
	require.NoError(t, err)
	assert.Empty(t, shortfalls)
	assert.Empty(t, low)

	assert.True(t, stock.decremented[10].Equal(dec("90")))
	assert.True(t, stock.decremented[11].Equal(dec("400")))
}

func TestReserveReportsLowStockBelowThreshold(t *testing.T) {
	stock := &fakeStockStore{stock: map[int]*Consumable{
		10: {ID: 10, Name: "Espresso beans", Quantity: dec("10")},
	}}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	shortfalls, low, err := g.reserve(map[int]decimal.Decimal{10: dec("6")})
	require.NoError(t, err)
	assert.Empty(t, shortfalls)

	require.Len(t, low, 1)
	assert.Equal(t, 10, low[0].ConsumableId)
	assert.True(t, low[0].Remaining.Equal(dec("4")))
}

func TestReserveExactDepletionSucceedsAndFlagsLowStock(t *testing.T) {
	stock := &fakeStockStore{stock: map[int]*Consumable{
		10: {ID: 10, Name: "Espresso beans", Quantity: dec("18")},
	}}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	shortfalls, low, err := g.reserve(map[int]decimal.Decimal{10: dec("18")})
	require.NoError(t, err)
	assert.Empty(t, shortfalls)

	require.Len(t, low, 1)
	assert.True(t, low[0].Remaining.IsZero())
}

func TestReserveAtThresholdIsNotLowStock(t *testing.T) {
	stock := &fakeStockStore{stock: map[int]*Consumable{
		10: {ID: 10, Name: "Espresso beans", Quantity: dec("11")},
	}}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	_, low, err := g.reserve(map[int]decimal.Decimal{10: dec("6")})
	require.NoError(t, err)

	assert.Empty(t, low, "remaining 5 equals the threshold and must not fire")
}

func TestReserveDeniedDecrementBecomesShortfall(t *testing.T) {
	stock := &fakeStockStore{
		stock: map[int]*Consumable{
			10: {ID: 10, Name: "Espresso beans", Quantity: dec("500")},
		},
		denyId: 10,
	}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	shortfalls, _, err := g.reserve(map[int]decimal.Decimal{10: dec("90")})
	require.NoError(t, err)

	require.Len(t, shortfalls, 1)
	assert.Equal(t, 10, shortfalls[0].ConsumableId)
}

func TestReserveSurfacesLockFailure(t *testing.T) {
	stock := &fakeStockStore{lockErr: errors.New("lock wait timeout")}
	g := &saleGuard{products: cafeProducts(), stock: stock}

	_, _, err := g.reserve(map[int]decimal.Decimal{10: dec("18")})
	assert.Error(t, err)
}

func TestInsufficientStockErrorListsAllParts(t *testing.T) {
	err := &InsufficientStockError{Shortfalls: []StockShortfall{
		{ConsumableId: 10, Name: "Espresso beans", Available: dec("30"), Required: dec("90")},
		{ConsumableId: 11, Name: "Whole milk", Available: dec("100"), Required: dec("400")},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "Espresso beans")
	assert.Contains(t, msg, "Whole milk")
	assert.Contains(t, msg, "available 30, required 90")
}
