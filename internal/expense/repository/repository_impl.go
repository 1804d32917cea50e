package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/expense/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, expense *domain.Expense) error {
	return db.WithContext(ctx).Create(expense).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Expense, error) {
	var expense domain.Expense
	err := db.WithContext(ctx).First(&expense, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Expense, error) {
	var expenses []domain.Expense
	err := db.WithContext(ctx).Order("id desc").Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, expense *domain.Expense) error {
	return db.WithContext(ctx).
		Model(&domain.Expense{}).
		Where("id = ?", expense.ID).
		Updates(map[string]any{
			"expense_date":      expense.ExpenseDate,
			"title":             expense.Title,
			"category":          expense.Category,
			"payment_method_id": expense.PaymentMethodID,
			"amount":            expense.Amount,
			"notes":             expense.Notes,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Expense{}, "id = ?", id).Error
}

func (r *repo) NumberTaken(ctx context.Context, db *gorm.DB, number string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Expense{}).
		Where("expense_number = ?", number).
		Count(&count).Error
	return count > 0, err
}
