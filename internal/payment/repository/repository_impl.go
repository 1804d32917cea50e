package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/finbook/internal/payment/domain"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) InsertMethod(ctx context.Context, db *gorm.DB, m *domain.Method) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repository) FindMethods(ctx context.Context, db *gorm.DB) ([]domain.Method, error) {
	var methods []domain.Method
	if err := db.WithContext(ctx).Order("name asc").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *repository) FindMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Method, error) {
	var m domain.Method
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) UpdateMethod(ctx context.Context, db *gorm.DB, m *domain.Method) error {
	return db.WithContext(ctx).Model(&domain.Method{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"name":               m.Name,
			"method_type":        m.MethodType,
			"account_identifier": m.AccountIdentifier,
			"details":            m.Details,
		}).Error
}

func (r *repository) DeleteMethod(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Method{}, "id = ?", id).Error
}

func (r *repository) InsertCurrency(ctx context.Context, db *gorm.DB, c *domain.Currency) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindCurrencies(ctx context.Context, db *gorm.DB) ([]domain.Currency, error) {
	var currencies []domain.Currency
	if err := db.WithContext(ctx).Order("code asc").Find(&currencies).Error; err != nil {
		return nil, err
	}
	return currencies, nil
}

func (r *repository) FindCurrencyByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Currency, error) {
	var c domain.Currency
	if err := db.WithContext(ctx).First(&c, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) DeleteCurrency(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Currency{}, "id = ?", id).Error
}

func (r *repository) InsertTransaction(ctx context.Context, db *gorm.DB, t *domain.Transaction) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindTransactions(ctx context.Context, db *gorm.DB, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	tx := db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.Type != "" {
		tx = tx.Where("transaction_type = ?", filter.Type)
	}
	if filter.FromDate != "" {
		tx = tx.Where("transaction_date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		tx = tx.Where("transaction_date <= ?", filter.ToDate)
	}

	var txns []domain.Transaction
	if err := tx.Order("transaction_date desc, id desc").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) FindTransactionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) DeleteTransaction(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Transaction{}, "id = ?", id).Error
}
