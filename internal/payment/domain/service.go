package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidName            = errors.New("invalid_name")
	ErrInvalidMethodType      = errors.New("invalid_method_type")
	ErrInvalidCode            = errors.New("invalid_currency_code")
	ErrDuplicateCode          = errors.New("duplicate_currency_code")
	ErrInvalidDate            = errors.New("invalid_date")
	ErrInvalidTransactionType = errors.New("invalid_transaction_type")
	ErrInvalidReference       = errors.New("invalid_reference")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrUnknownCurrency        = errors.New("unknown_currency")
	ErrUnknownMethod          = errors.New("unknown_method")
	ErrMethodNotFound         = errors.New("method_not_found")
	ErrCurrencyNotFound       = errors.New("currency_not_found")
	ErrTransactionNotFound    = errors.New("transaction_not_found")
)

// MethodInput carries the writable fields of a payment method.
type MethodInput struct {
	Name              string     `json:"name"`
	MethodType        MethodType `json:"method_type"`
	AccountIdentifier string     `json:"account_identifier"`
	Details           string     `json:"details"`
}

// CurrencyInput carries the writable fields of a currency.
type CurrencyInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	IsCrypto bool   `json:"is_crypto"`
}

// TransactionInput carries the writable fields of a ledger entry. The
// reference is optional; when given, both type and id must be set.
type TransactionInput struct {
	Date          string          `json:"date"`
	Type          TransactionType `json:"type"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Amount        float64         `json:"amount"`
	CurrencyCode  string          `json:"currency_code"`
	MethodID      string          `json:"method_id"`
	Notes         string          `json:"notes"`
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	Type     TransactionType
	FromDate string
	ToDate   string
}

type Service interface {
	CreateMethod(ctx context.Context, in MethodInput) (Method, error)
	ListMethods(ctx context.Context) ([]Method, error)
	GetMethod(ctx context.Context, id string) (Method, error)
	UpdateMethod(ctx context.Context, id string, in MethodInput) (Method, error)
	DeleteMethod(ctx context.Context, id string) error

	CreateCurrency(ctx context.Context, in CurrencyInput) (Currency, error)
	ListCurrencies(ctx context.Context) ([]Currency, error)
	DeleteCurrency(ctx context.Context, id string) error

	CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	GetTransaction(ctx context.Context, id string) (Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

type Repository interface {
	InsertMethod(ctx context.Context, db *gorm.DB, m *Method) error
	FindMethods(ctx context.Context, db *gorm.DB) ([]Method, error)
	FindMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Method, error)
	UpdateMethod(ctx context.Context, db *gorm.DB, m *Method) error
	DeleteMethod(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertCurrency(ctx context.Context, db *gorm.DB, c *Currency) error
	FindCurrencies(ctx context.Context, db *gorm.DB) ([]Currency, error)
	FindCurrencyByCode(ctx context.Context, db *gorm.DB, code string) (*Currency, error)
	DeleteCurrency(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertTransaction(ctx context.Context, db *gorm.DB, t *Transaction) error
	FindTransactions(ctx context.Context, db *gorm.DB, filter TransactionFilter) ([]Transaction, error)
	FindTransactionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	DeleteTransaction(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
