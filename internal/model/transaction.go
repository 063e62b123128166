package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single recorded income or expense.
//
// Type is a snapshot of the category's type at the time the transaction was
// classified. Retyping the category later does not change it.
type Transaction struct {
	Date         time.Time
	Amount       decimal.Decimal
	Description  string
	CategoryName string // empty when the category has been deleted
	ExternalID   string // source identifier for imported rows
	Type         CategoryType
	ID           int64
	CategoryID   int64
}

// TransactionField names a field that can be edited in place.
type TransactionField string

// Editable transaction fields.
const (
	FieldType        TransactionField = "type"
	FieldCategory    TransactionField = "category"
	FieldAmount      TransactionField = "amount"
	FieldDate        TransactionField = "date"
	FieldDescription TransactionField = "description"
)

// ImportedTransaction is a transaction produced by an external source
// (bank statement file, bank sync) before it is classified into a category.
type ImportedTransaction struct {
	Date         time.Time
	Amount       decimal.Decimal
	Description  string
	ExternalID   string
	CategoryHint string
	Type         CategoryType
}
