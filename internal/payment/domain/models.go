// Package domain contains payment methods, currencies, and the
// transaction ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MethodType is the closed set of payment method categories.
type MethodType string

const (
	MethodCash   MethodType = "cash"
	MethodBank   MethodType = "bank"
	MethodCard   MethodType = "card"
	MethodCrypto MethodType = "crypto"
	MethodOther  MethodType = "other"
)

func (t MethodType) Valid() bool {
	switch t {
	case MethodCash, MethodBank, MethodCard, MethodCrypto, MethodOther:
		return true
	default:
		return false
	}
}

// Method is a way money moves: a bank account, a card, a cash box.
type Method struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	Name              string       `gorm:"not null" json:"name"`
	MethodType        MethodType   `gorm:"column:method_type;not null" json:"method_type"`
	AccountIdentifier string       `json:"account_identifier,omitempty"`
	Details           string       `json:"details,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Method) TableName() string { return "payment_methods" }

// Currency is an accepted settlement currency.
type Currency struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"not null" json:"name"`
	Symbol    string       `json:"symbol,omitempty"`
	IsCrypto  bool         `gorm:"column:is_crypto;not null;default:false" json:"is_crypto"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Currency) TableName() string { return "payment_currencies" }

// TransactionType tells what a transaction settles. invoice_receipt is
// incoming money; purchase_payment and expense_payment are outgoing.
type TransactionType string

const (
	TxnInvoiceReceipt  TransactionType = "invoice_receipt"
	TxnPurchasePayment TransactionType = "purchase_payment"
	TxnExpensePayment  TransactionType = "expense_payment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxnInvoiceReceipt, TxnPurchasePayment, TxnExpensePayment:
		return true
	default:
		return false
	}
}

// Incoming reports whether the transaction brings money in.
func (t TransactionType) Incoming() bool { return t == TxnInvoiceReceipt }

// ReferenceType tags which record a transaction settles. The reference is
// advisory: storage does not enforce it, and deleting the referenced
// record orphans the transaction.
type ReferenceType string

const (
	RefInvoice  ReferenceType = "invoice"
	RefPurchase ReferenceType = "purchase"
	RefExpense  ReferenceType = "expense"
)

func (t ReferenceType) Valid() bool {
	switch t {
	case RefInvoice, RefPurchase, RefExpense:
		return true
	default:
		return false
	}
}

// Transaction is one ledger entry. Writing a transaction never rewrites a
// document's stored totals; outstanding balances are derived at read
// time.
type Transaction struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	TransactionDate string          `gorm:"column:transaction_date;not null" json:"date"`
	TransactionType TransactionType `gorm:"column:transaction_type;not null" json:"type"`
	ReferenceType   *ReferenceType  `gorm:"column:reference_type" json:"reference_type,omitempty"`
	ReferenceID     *snowflake.ID   `gorm:"column:reference_id" json:"reference_id,omitempty"`
	Amount          float64         `gorm:"not null" json:"amount"`
	CurrencyCode    string          `gorm:"column:currency_code;not null" json:"currency_code"`
	MethodID        *snowflake.ID   `gorm:"column:method_id" json:"method_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "payment_transactions" }
