// Package seed bootstraps the records a fresh installation needs before
// the first login: the default admin account and the settlement
// currencies. Seeding is idempotent and safe to re-run on every start,
// including after a restore.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/finbook/internal/auth/domain"
	"github.com/smallbiznis/finbook/internal/auth/password"
	paymentdomain "github.com/smallbiznis/finbook/internal/payment/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	defaultAdminFullName = "Administrator"
)

var defaultCurrencies = []paymentdomain.Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "TRY", Name: "Turkish Lira", Symbol: "₺"},
	{Code: "AED", Name: "UAE Dirham", Symbol: "د.إ"},
	{Code: "BTC", Name: "Bitcoin", Symbol: "₿", IsCrypto: true},
	{Code: "ETH", Name: "Ethereum", Symbol: "Ξ", IsCrypto: true},
}

// Ensure seeds the default admin and currencies inside one transaction.
func Ensure(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdmin(ctx, tx, node); err != nil {
			return err
		}
		return ensureCurrencies(ctx, tx, node)
	})
}

// ensureAdmin creates admin/admin123 only while the users table is
// empty, so a deliberately deleted or renamed admin never comes back.
func ensureAdmin(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&authdomain.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := authdomain.User{
		ID:           node.Generate(),
		Username:     defaultAdminUsername,
		FullName:     defaultAdminFullName,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&user).Error
}

func ensureCurrencies(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, currency := range defaultCurrencies {
		var existing paymentdomain.Currency
		err := tx.WithContext(ctx).
			Where("code = ?", currency.Code).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		currency.ID = node.Generate()
		currency.CreatedAt = time.Now().UTC()
		if err := tx.WithContext(ctx).Create(&currency).Error; err != nil {
			return err
		}
	}
	return nil
}
