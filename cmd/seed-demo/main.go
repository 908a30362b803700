// seed-demo loads a small demo dataset: an admin user, one cash register,
// a few tables, consumables and products with recipes. Safe to rerun;
// existing rows are left alone.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/models"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	adminUsername = "cafeposAdmin"
	adminPassword = "C@fepos!Admin"
	adminName     = "Cafepos Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Seed")

	seedAdmin(ctx, db)
	registerId := seedCashRegister(ctx, db)
	seedTables(ctx)
	consumableIds := seedConsumables(ctx, db)
	seedProducts(ctx, db, consumableIds)

	fmt.Printf("Demo data ready (cash register id=%d)\n", registerId)
}

func seedAdmin(ctx context.Context, db *gorm.DB) {
	var existing models.User
	err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&existing).Error
	if err == nil {
		return
	}
	if err != gorm.ErrRecordNotFound {
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	}

	user, err := models.CreateUser(ctx, &models.NewUser{
		Username: adminUsername,
		Name:     adminName,
		Password: adminPassword,
		Role:     "admin",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created admin user: username=%q (id=%d)\n", adminUsername, user.ID)
}

func seedCashRegister(ctx context.Context, db *gorm.DB) int {
	var existing models.CashRegister
	err := db.WithContext(ctx).Model(&models.CashRegister{}).Where("name = ?", "Front Counter").First(&existing).Error
	if err == nil {
		return existing.ID
	}

	register, err := models.CreateCashRegister(ctx, &models.NewCashRegister{
		Name:     "Front Counter",
		Location: "Main hall",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create cash register: %v\n", err)
		os.Exit(1)
	}
	return register.ID
}

func seedTables(ctx context.Context) {
	tables := []models.NewTable{
		{ID: "T-01", Zone: "Window"},
		{ID: "T-02", Zone: "Window"},
		{ID: "T-03", Zone: "Patio"},
		{ID: "T-04", Zone: "Patio"},
	}
	for _, t := range tables {
		if _, err := models.CreateTable(ctx, &t); err != nil {
			// Rerun: already exists.
			continue
		}
	}
}

func seedConsumables(ctx context.Context, db *gorm.DB) map[string]int {
	seeds := []models.NewConsumable{
		{Name: "Espresso beans", Quantity: decimal.NewFromInt(2000), UnitMeasurement: models.UnitGram, Cost: decimal.NewFromFloat(0.05)},
		{Name: "Whole milk", Quantity: decimal.NewFromInt(10000), UnitMeasurement: models.UnitMilliliter, Cost: decimal.NewFromFloat(0.002)},
		{Name: "Croissant", Quantity: decimal.NewFromInt(24), UnitMeasurement: models.UnitPiece, Cost: decimal.NewFromFloat(1.20)},
	}

	ids := make(map[string]int, len(seeds))
	for _, s := range seeds {
		var existing models.Consumable
		if err := db.WithContext(ctx).Model(&models.Consumable{}).Where("name = ?", s.Name).First(&existing).Error; err == nil {
			ids[s.Name] = existing.ID
			continue
		}
		created, err := models.CreateConsumable(ctx, &s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create consumable %q: %v\n", s.Name, err)
			os.Exit(1)
		}
		ids[s.Name] = created.ID
	}
	return ids
}

func seedProducts(ctx context.Context, db *gorm.DB, consumables map[string]int) {
	seeds := []models.NewProduct{
		{
			Name:     "Espresso",
			Category: "Coffee",
			Price:    decimal.NewFromFloat(2.50),
			Ingredients: []models.NewIngredient{
				{ConsumableId: consumables["Espresso beans"], QuantityPerUnit: decimal.NewFromInt(18)},
			},
		},
		{
			Name:     "Latte",
			Category: "Coffee",
			Price:    decimal.NewFromFloat(3.80),
			Ingredients: []models.NewIngredient{
				{ConsumableId: consumables["Espresso beans"], QuantityPerUnit: decimal.NewFromInt(18)},
				{ConsumableId: consumables["Whole milk"], QuantityPerUnit: decimal.NewFromInt(200)},
			},
		},
		{
			Name:     "Croissant",
			Category: "Bakery",
			Price:    decimal.NewFromFloat(2.90),
			Ingredients: []models.NewIngredient{
				{ConsumableId: consumables["Croissant"], QuantityPerUnit: decimal.NewFromInt(1)},
			},
		},
	}

	for _, s := range seeds {
		var existing models.Product
		if err := db.WithContext(ctx).Model(&models.Product{}).Where("name = ?", s.Name).First(&existing).Error; err == nil {
			continue
		}
		if _, err := models.CreateProduct(ctx, &s); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create product %q: %v\n", s.Name, err)
			os.Exit(1)
		}
	}
}
