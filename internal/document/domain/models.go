// Package domain contains the financial document engine models: sales
// invoices and purchase invoices with their line items.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind discriminates sales invoices from purchase invoices. Each kind has
// its own header and line tables, so document numbers are unique within a
// kind.
type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindPurchase Kind = "purchase"
)

func (k Kind) Valid() bool {
	return k == KindInvoice || k == KindPurchase
}

// TableName returns the header table backing the kind.
func (k Kind) TableName() string {
	if k == KindPurchase {
		return "purchase_invoices"
	}
	return "invoices"
}

// LineTableName returns the line-item table backing the kind.
func (k Kind) LineTableName() string {
	if k == KindPurchase {
		return "purchase_invoice_items"
	}
	return "invoice_items"
}

// PartySnapshot is the party identity copied onto the document at
// creation time. It is a value copy, never a live reference; later edits
// to the registry do not touch issued documents.
type PartySnapshot struct {
	PartyID          *snowflake.ID `gorm:"column:party_id" json:"party_id,omitempty"`
	PartyName        string        `gorm:"column:party_name" json:"party_name"`
	PartyTaxNumber   string        `gorm:"column:party_tax_number" json:"party_tax_number"`
	RegistrationName string        `json:"registration_name"`
	PhoneNumber      string        `json:"phone_number"`
	Address          string        `json:"address"`
	Website          string        `json:"website"`
	Country          string        `json:"country"`
	Address2         string        `gorm:"column:address_2" json:"address_2"`
}

// Document is an invoice or purchase header. Subtotal, VATTotal, and
// Total are denormalized from the lines and rewritten whenever the line
// set changes.
type Document struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Number        string       `gorm:"not null;uniqueIndex" json:"number"`
	DocDate       string       `gorm:"column:doc_date;not null" json:"date"`
	PartySnapshot `gorm:"embedded"`
	Subtotal      float64   `gorm:"not null;default:0" json:"subtotal"`
	VATTotal      float64   `gorm:"column:vat_total;not null;default:0" json:"vat_total"`
	Total         float64   `gorm:"not null;default:0" json:"total"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Lines []Line `gorm:"-" json:"lines"`
}

// Line is one billable row of a document. VATRate is a percentage of the
// line net: line_total = quantity*price + quantity*price*vat/100.
type Line struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	DocumentID snowflake.ID  `gorm:"column:document_id;not null;index" json:"document_id"`
	ItemID     *snowflake.ID `gorm:"column:item_id" json:"item_id,omitempty"`
	ItemName   string        `gorm:"not null" json:"item_name"`
	Quantity   float64       `gorm:"not null;default:1" json:"quantity"`
	Unit       string        `json:"unit"`
	Price      float64       `gorm:"not null;default:0" json:"price"`
	VATRate    float64       `gorm:"column:vat_amount;not null;default:0" json:"vat_amount"`
	LineTotal  float64       `gorm:"not null;default:0" json:"line_total"`
	Position   int           `gorm:"not null;default:0" json:"-"`
}
