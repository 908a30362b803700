package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable menu item. Its Ingredients list is the recipe: how
// much of each consumable one sold unit takes out of stock.
type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:100" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"price"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	Ingredients []Ingredient    `gorm:"foreignKey:ProductId" json:"ingredients,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Ingredient is one recipe line.
type Ingredient struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ProductId       int             `gorm:"index;not null" json:"product_id"`
	ConsumableId    int             `gorm:"index;not null" json:"consumable_id" binding:"required"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_per_unit"`
	IsActive        *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	IsActive    *bool           `json:"is_active"`
	Ingredients []NewIngredient `json:"ingredients"`
}

type NewIngredient struct {
	ConsumableId    int             `json:"consumable_id" binding:"required"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" binding:"required"`
}

func (input NewProduct) validate(ctx context.Context) error {
	if input.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	var consumableIds []int
	for _, line := range input.Ingredients {
		if !line.QuantityPerUnit.IsPositive() {
			return errors.New("ingredient quantity per unit must be positive")
		}
		consumableIds = append(consumableIds, line.ConsumableId)
	}
	if len(consumableIds) > 0 {
		if err := utils.ValidateResourcesId[Consumable](ctx, consumableIds); err != nil {
			return errors.New("consumable not found")
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	product := Product{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		IsActive:    isActive,
	}
	for _, line := range input.Ingredients {
		product.Ingredients = append(product.Ingredients, Ingredient{
			ConsumableId:    line.ConsumableId,
			QuantityPerUnit: line.QuantityPerUnit,
			IsActive:        utils.NewTrue(),
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	_ = utils.StoreRedis[Product](&product, product.ID)
	return &product, nil
}

// SetProductActive puts a product on or off the menu and drops the cached
// copy so stale state cannot be served.
func SetProductActive(ctx context.Context, id int, active bool) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	isActive := utils.NewFalse()
	if active {
		isActive = utils.NewTrue()
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"IsActive": isActive,
	}).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedis[Product](id)
	return utils.FetchModel[Product](ctx, id, "Ingredients")
}

// GetProduct reads through the menu cache; the recipe changes rarely and the
// sale path re-reads the row inside its own transaction anyway.
func GetProduct(ctx context.Context, id int) (*Product, error) {
	if cached, ok := utils.FetchRedis[Product](id); ok {
		return cached, nil
	}
	product, err := utils.FetchModel[Product](ctx, id, "Ingredients")
	if err != nil {
		return nil, err
	}
	_ = utils.StoreRedis[Product](product, product.ID)
	return product, nil
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	return utils.FetchAllModels[Product](ctx, "Ingredients")
}

/* store funcs used by the sale guard (run inside the sale tx) */

// activeProductForSale loads a product for sale validation. Inactive or
// missing products are both reported as not sellable.
func activeProductForSale(tx *gorm.DB, productId int) (*Product, error) {
	var product Product
	err := tx.First(&product, "id = ?", productId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if product.IsActive == nil || !*product.IsActive {
		return nil, nil
	}
	return &product, nil
}

// activeIngredientsForProduct returns the product's active recipe lines.
func activeIngredientsForProduct(tx *gorm.DB, productId int) ([]Ingredient, error) {
	var lines []Ingredient
	err := tx.Where("product_id = ? AND is_active = ?", productId, true).
		Find(&lines).Error
	return lines, err
}
