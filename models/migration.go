package models

import (
	"gorm.io/gorm"
)

// MigrateTable runs gorm auto-migration for every model in dependency order.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&CashRegister{},
		&Table{},
		&Bill{},
		&Product{},
		&Consumable{},
		&Ingredient{},
		&BillDetail{},
		&History{},
		&NotificationRecord{},
	)
}
