// Package domain contains the customer and vendor registry.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind discriminates between the customer and vendor registries. Each kind
// is persisted in its own table.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindVendor   Kind = "vendor"
)

func (k Kind) Valid() bool {
	return k == KindCustomer || k == KindVendor
}

// TableName returns the storage table backing the kind.
func (k Kind) TableName() string {
	if k == KindVendor {
		return "vendors"
	}
	return "customers"
}

// PartyType tells companies and individuals apart.
type PartyType string

const (
	PartyTypeCompany    PartyType = "Company"
	PartyTypeIndividual PartyType = "Individual"
)

// Party is a customer or vendor record. Documents copy its identity
// fields as a snapshot at creation time, so later edits never rewrite
// history.
type Party struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	Number           string       `gorm:"not null;uniqueIndex" json:"number"`
	PartyType        PartyType    `gorm:"column:party_type" json:"party_type"`
	Name             string       `gorm:"not null" json:"name"`
	TaxNumber        string       `json:"tax_number"`
	RegistrationName string       `json:"registration_name"`
	PhoneNumber      string       `json:"phone_number"`
	Address          string       `json:"address"`
	Website          string       `json:"website"`
	Country          string       `json:"country"`
	Address2         string       `gorm:"column:address_2" json:"address_2"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
