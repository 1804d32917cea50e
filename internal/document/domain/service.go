package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// LineInput is one requested line row. ItemID is optional; free-text
// lines carry only a name.
type LineInput struct {
	ItemID   string
	ItemName string
	Quantity float64
	Unit     string
	Price    float64
	VATRate  float64
}

// CreateDocumentRequest creates a document. Number is an optional caller
// preference; when empty or already taken a fresh number is generated.
// PartyID selects the snapshot source; when empty, Snapshot must carry at
// least a name.
type CreateDocumentRequest struct {
	Number   string
	Date     string
	PartyID  string
	Snapshot PartySnapshot
	Lines    []LineInput
}

// UpdateDocumentRequest replaces the full line set and header fields of
// an existing document. Lines nil means "leave lines untouched"; an
// empty non-nil slice is rejected.
type UpdateDocumentRequest struct {
	ID       string
	Number   string
	Date     string
	PartyID  string
	Snapshot *PartySnapshot
	Lines    []LineInput
}

type ListFilter struct {
	Search   string
	DateFrom string
	DateTo   string
}

type Service interface {
	Create(ctx context.Context, kind Kind, req CreateDocumentRequest) (Document, error)
	GetByID(ctx context.Context, kind Kind, id string) (Document, error)
	GetByNumber(ctx context.Context, kind Kind, number string) (Document, error)
	List(ctx context.Context, kind Kind, filter ListFilter) ([]Document, error)
	Update(ctx context.Context, kind Kind, req UpdateDocumentRequest) (Document, error)
	Delete(ctx context.Context, kind Kind, id string) error
}

var (
	ErrInvalidKind     = errors.New("invalid_document_kind")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrInvalidParty    = errors.New("invalid_party")
	ErrNoLines         = errors.New("no_lines")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidVATRate  = errors.New("invalid_vat_amount")
	ErrNotFound        = errors.New("not_found")
	ErrDuplicateNumber = errors.New("duplicate_number")
)

type Repository interface {
	InsertDocument(ctx context.Context, db *gorm.DB, kind Kind, doc *Document) error
	InsertLines(ctx context.Context, db *gorm.DB, kind Kind, lines []Line) error
	FindByID(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (*Document, error)
	FindByNumber(ctx context.Context, db *gorm.DB, kind Kind, number string) (*Document, error)
	FetchLines(ctx context.Context, db *gorm.DB, kind Kind, docID snowflake.ID) ([]Line, error)
	List(ctx context.Context, db *gorm.DB, kind Kind, filter ListFilter) ([]Document, error)
	UpdateHeader(ctx context.Context, db *gorm.DB, kind Kind, doc *Document) error
	DeleteLines(ctx context.Context, db *gorm.DB, kind Kind, docID snowflake.ID) error
	DeleteDocument(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) error
	NumberTaken(ctx context.Context, db *gorm.DB, kind Kind, number string) (bool, error)
}
