// Package domain contains standalone business expenses.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Expense is a cost that does not arrive as a purchase invoice - rent,
// fees, payroll and the like.
type Expense struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	ExpenseNumber   string        `gorm:"column:expense_number;not null;uniqueIndex" json:"expense_number"`
	ExpenseDate     string        `gorm:"column:expense_date;not null" json:"date"`
	Title           string        `gorm:"not null" json:"title"`
	Category        string        `json:"category"`
	PaymentMethodID *snowflake.ID `gorm:"column:payment_method_id" json:"payment_method_id,omitempty"`
	Amount          float64       `gorm:"not null;default:0" json:"amount"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Expense) TableName() string { return "expenses" }
