package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
)

type CashRegister struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Location  string    `gorm:"size:100" json:"location"`
	IsActive  *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCashRegister struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

func CreateCashRegister(ctx context.Context, input *NewCashRegister) (*CashRegister, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}

	register := CashRegister{
		Name:     input.Name,
		Location: input.Location,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&register).Error; err != nil {
		if utils.IsDuplicateEntry(err) {
			return nil, errors.New("cash register name already exists")
		}
		return nil, err
	}
	return &register, nil
}

func GetCashRegister(ctx context.Context, id int) (*CashRegister, error) {
	return utils.FetchModel[CashRegister](ctx, id)
}

func GetCashRegisters(ctx context.Context) ([]*CashRegister, error) {
	return utils.FetchAllModels[CashRegister](ctx)
}

func DeactivateCashRegister(ctx context.Context, id int) (*CashRegister, error) {
	register, err := utils.FetchModel[CashRegister](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(register).Updates(map[string]interface{}{
		"IsActive": utils.NewFalse(),
	}).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[CashRegister](ctx, id)
}
