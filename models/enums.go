package models

import (
	"encoding/json"
	"errors"
)

type BillStatus string

const (
	BillStatusOpen      BillStatus = "Open"
	BillStatusClosed    BillStatus = "Closed"
	BillStatusCancelled BillStatus = "Cancelled"
)

func (s *BillStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("bill status must be string")
	}
	switch str {
	case "Open":
		*s = BillStatusOpen
	case "Closed":
		*s = BillStatusClosed
	case "Cancelled":
		*s = BillStatusCancelled
	default:
		return errors.New("invalid bill status")
	}
	return nil
}

type TableStatus string

const (
	TableStatusAvailable TableStatus = "Available"
	TableStatusOccupied  TableStatus = "Occupied"
	TableStatusReserved  TableStatus = "Reserved"
)

func (s *TableStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("table status must be string")
	}
	switch str {
	case "Available":
		*s = TableStatusAvailable
	case "Occupied":
		*s = TableStatusOccupied
	case "Reserved":
		*s = TableStatusReserved
	default:
		return errors.New("invalid table status")
	}
	return nil
}

type UnitMeasurement string

const (
	UnitGram       UnitMeasurement = "g"
	UnitKilogram   UnitMeasurement = "kg"
	UnitMilliliter UnitMeasurement = "ml"
	UnitLiter      UnitMeasurement = "l"
	UnitPiece      UnitMeasurement = "pc"
)
