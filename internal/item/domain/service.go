package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateItemRequest struct {
	Name        string
	Price       float64
	VATRate     float64
	Unit        string
	Description string
}

type UpdateItemRequest struct {
	ID          string
	Name        string
	Price       float64
	VATRate     float64
	Unit        string
	Description string
}

type Service interface {
	Create(context.Context, CreateItemRequest) (Item, error)
	List(context.Context) ([]Item, error)
	GetByID(context.Context, string) (Item, error)
	Update(context.Context, UpdateItemRequest) (Item, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidVATRate = errors.New("invalid_vat_amount")
	ErrNotFound       = errors.New("not_found")
	ErrReferenced     = errors.New("item_referenced")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *Item) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Item, error)
	List(ctx context.Context, db *gorm.DB) ([]Item, error)
	Update(ctx context.Context, db *gorm.DB, item *Item) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	NumberTaken(ctx context.Context, db *gorm.DB, number string) (bool, error)
	ReferencedByLines(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
