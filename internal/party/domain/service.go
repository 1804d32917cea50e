package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type PartyInput struct {
	PartyType        string
	Name             string
	TaxNumber        string
	RegistrationName string
	PhoneNumber      string
	Address          string
	Website          string
	Country          string
	Address2         string
}

type Service interface {
	Create(ctx context.Context, kind Kind, input PartyInput) (Party, error)
	List(ctx context.Context, kind Kind) ([]Party, error)
	GetByID(ctx context.Context, kind Kind, id string) (Party, error)
	Update(ctx context.Context, kind Kind, id string, input PartyInput) (Party, error)
	Delete(ctx context.Context, kind Kind, id string) error
}

var (
	ErrInvalidKind = errors.New("invalid_party_kind")
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidType = errors.New("invalid_party_type")
	ErrNotFound    = errors.New("not_found")
	ErrReferenced  = errors.New("party_referenced")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, kind Kind, party *Party) error
	FindByID(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (*Party, error)
	List(ctx context.Context, db *gorm.DB, kind Kind) ([]Party, error)
	Update(ctx context.Context, db *gorm.DB, kind Kind, party *Party) error
	Delete(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) error
	NumberTaken(ctx context.Context, db *gorm.DB, kind Kind, number string) (bool, error)
	ReferencedByDocuments(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (bool, error)
}
