// Package domain contains the reusable billable item catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Item is a catalog entry selectable onto document lines. Price and
// VATRate are defaults copied onto the line at selection time; VATRate is
// a percentage of the line net.
type Item struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ItemNumber  string       `gorm:"column:item_number;not null;uniqueIndex" json:"item_number"`
	Name        string       `gorm:"not null" json:"name"`
	Price       float64      `json:"price"`
	VATRate     float64      `gorm:"column:vat_amount" json:"vat_amount"`
	Unit        string       `json:"unit"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Item) TableName() string { return "items" }
