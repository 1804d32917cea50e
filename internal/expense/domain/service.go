package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ExpenseInput struct {
	Date            string
	Title           string
	Category        string
	PaymentMethodID string
	Amount          float64
	Notes           string
}

type Service interface {
	Create(context.Context, ExpenseInput) (Expense, error)
	List(context.Context) ([]Expense, error)
	GetByID(context.Context, string) (Expense, error)
	Update(ctx context.Context, id string, input ExpenseInput) (Expense, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidDate   = errors.New("invalid_date")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrNotFound      = errors.New("not_found")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, expense *Expense) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Expense, error)
	List(ctx context.Context, db *gorm.DB) ([]Expense, error)
	Update(ctx context.Context, db *gorm.DB, expense *Expense) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	NumberTaken(ctx context.Context, db *gorm.DB, number string) (bool, error)
}
