package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	expensedomain "github.com/smallbiznis/finbook/internal/expense/domain"
	expenserepo "github.com/smallbiznis/finbook/internal/expense/repository"
	expenseservice "github.com/smallbiznis/finbook/internal/expense/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNode *snowflake.Node

func init() {
	var err error
	testNode, err = snowflake.NewNode(7)
	if err != nil {
		panic(err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_expense_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	require.NoError(t, db.AutoMigrate(&expensedomain.Expense{}))
	return db
}

func newService(t *testing.T, db *gorm.DB) expensedomain.Service {
	t.Helper()
	return expenseservice.New(expenseservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testNode,
		Repo:  expenserepo.Provide(),
	})
}

func TestCreateAssignsNumber(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	expense, err := svc.Create(ctx, expensedomain.ExpenseInput{
		Date:     "2026-03-05",
		Title:    "  Office rent  ",
		Category: "rent",
		Amount:   1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "Office rent", expense.Title)
	assert.True(t, strings.HasPrefix(expense.ExpenseNumber, "EXP-"), "got %q", expense.ExpenseNumber)

	got, err := svc.GetByID(ctx, expense.ID.String())
	require.NoError(t, err)
	assert.Equal(t, expense.ExpenseNumber, got.ExpenseNumber)
	assert.InDelta(t, 1500, got.Amount, 1e-9)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.Create(ctx, expensedomain.ExpenseInput{Date: "05/03/2026", Title: "x"})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidDate)

	_, err = svc.Create(ctx, expensedomain.ExpenseInput{Date: "2026-03-05", Title: "   "})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidTitle)

	_, err = svc.Create(ctx, expensedomain.ExpenseInput{Date: "2026-03-05", Title: "x", Amount: -1})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidAmount)

	_, err = svc.Create(ctx, expensedomain.ExpenseInput{
		Date:            "2026-03-05",
		Title:           "x",
		PaymentMethodID: "garbage",
	})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidID)
}

func TestUpdateReplacesFieldsKeepsNumber(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	expense, err := svc.Create(ctx, expensedomain.ExpenseInput{
		Date:   "2026-03-05",
		Title:  "Office rent",
		Amount: 1500,
	})
	require.NoError(t, err)

	method := testNode.Generate()
	updated, err := svc.Update(ctx, expense.ID.String(), expensedomain.ExpenseInput{
		Date:            "2026-04-05",
		Title:           "Office rent April",
		Category:        "rent",
		PaymentMethodID: method.String(),
		Amount:          1600,
		Notes:           "paid late",
	})
	require.NoError(t, err)
	assert.Equal(t, expense.ExpenseNumber, updated.ExpenseNumber)
	assert.Equal(t, "2026-04-05", updated.ExpenseDate)
	require.NotNil(t, updated.PaymentMethodID)
	assert.Equal(t, method, *updated.PaymentMethodID)
	assert.InDelta(t, 1600, updated.Amount, 1e-9)
}

func TestDeleteRemovesExpense(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	expense, err := svc.Create(ctx, expensedomain.ExpenseInput{
		Date:   "2026-03-05",
		Title:  "One off",
		Amount: 20,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, expense.ID.String()))

	_, err = svc.GetByID(ctx, expense.ID.String())
	assert.ErrorIs(t, err, expensedomain.ErrNotFound)

	err = svc.Delete(ctx, expense.ID.String())
	assert.ErrorIs(t, err, expensedomain.ErrNotFound)
}
