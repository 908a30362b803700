package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Reuse gin's `binding` tags so inputs arriving outside gin (seed
	// tooling, tests) get the same validation as HTTP requests.
	validate.SetTagName("binding")
}

func ValidateInput(input any) error {
	return validate.Struct(input)
}

// ValidateResourceId checks that a row of model T with the given primary key
// exists. Returns ErrorRecordNotFound when it does not.
func ValidateResourceId[T any](ctx context.Context, id any) error {
	db := config.GetDB()
	var count int64
	var model T
	if err := db.WithContext(ctx).Model(&model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// ValidateResourcesId checks that ALL ids exist for model M.
func ValidateResourcesId[M any, ID comparable](ctx context.Context, ids []ID) error {
	unqIds := UniqueSlice(ids)

	db := config.GetDB()
	var count int64
	var model M
	if err := db.WithContext(ctx).Model(&model).Where("id IN ?", unqIds).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}
	return nil
}
