package models

import (
	"encoding/json"
	"reflect"
	"time"

	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
)

// History is an audit row written by lifecycle hooks on the POS documents.
type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	var history History

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	// Requests carry the acting user in context; internal writers (seed
	// tooling, dispatchers) fall back to the system user.
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		userId = 0
	}
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok {
		userName = "system"
	}

	history.ActionType = actionType
	history.ReferenceID = referenceId
	history.ReferenceType = referenceType
	history.Before = string(b)
	history.After = string(a)
	history.Description = description
	history.UserId = userId
	history.UserName = userName

	return tx.Create(&history).Error
}

func SaveHistoryCreate(tx *gorm.DB, referenceId int, after interface{}, description string) error {
	return createHistory(tx, "CREATE", referenceId, referenceTypeOf(after), nil, after, description)
}

func SaveHistoryUpdate(tx *gorm.DB, referenceId int, before interface{}, description string) error {
	return createHistory(tx, "UPDATE", referenceId, referenceTypeOf(before), before, nil, description)
}

func referenceTypeOf(model interface{}) string {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
