// Package numbering generates the human-readable identifiers carried by
// items, parties, and financial documents.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefixes for every numbered record type.
const (
	PrefixItem     = "ITM"
	PrefixCustomer = "CUS"
	PrefixVendor   = "VEN"
	PrefixInvoice  = "INV"
	PrefixPurchase = "PUR"
	PrefixExpense  = "EXP"
)

const maxAttempts = 10

// ErrExhausted is returned when the attempt budget runs out without
// finding an unused number.
var ErrExhausted = errors.New("number_space_exhausted")

// TakenFunc reports whether a candidate number is already in use.
type TakenFunc func(ctx context.Context, number string) (bool, error)

// Next returns a number of the form PREFIX-XXXXXXXX that taken reports as
// unused. The storage layer's unique constraint remains the hard backstop
// against concurrent draws of the same candidate.
func Next(ctx context.Context, prefix string, taken TakenFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := Candidate(prefix)
		inUse, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

// Candidate returns a single draw without checking it for collisions.
func Candidate(prefix string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(token[:8]))
}
