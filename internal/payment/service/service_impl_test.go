package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	paymentdomain "github.com/smallbiznis/finbook/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/finbook/internal/payment/repository"
	paymentservice "github.com/smallbiznis/finbook/internal/payment/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_pay_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.AutoMigrate(
		&paymentdomain.Method{},
		&paymentdomain.Currency{},
		&paymentdomain.Transaction{},
	)
	require.NoError(t, err)
	return db
}

func newService(t *testing.T, db *gorm.DB) paymentdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	return paymentservice.New(paymentservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  paymentrepo.Provide(),
	})
}

func seedCurrency(t *testing.T, svc paymentdomain.Service, code string) {
	t.Helper()
	_, err := svc.CreateCurrency(context.Background(), paymentdomain.CurrencyInput{
		Code: code,
		Name: code,
	})
	require.NoError(t, err)
}

func TestCreateTransactionValidatesCurrency(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))
	seedCurrency(t, svc, "EUR")

	_, err := svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:         "2026-03-01",
		Type:         paymentdomain.TxnInvoiceReceipt,
		Amount:       100,
		CurrencyCode: "XXX",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrUnknownCurrency)

	txn, err := svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:         "2026-03-01",
		Type:         paymentdomain.TxnInvoiceReceipt,
		Amount:       100,
		CurrencyCode: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", txn.CurrencyCode)
}

func TestCreateTransactionValidatesTypeAndAmount(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))
	seedCurrency(t, svc, "USD")

	_, err := svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:         "2026-03-01",
		Type:         "refund",
		Amount:       10,
		CurrencyCode: "USD",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidTransactionType)

	_, err = svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:         "2026-03-01",
		Type:         paymentdomain.TxnExpensePayment,
		Amount:       0,
		CurrencyCode: "USD",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:         "03/01/2026",
		Type:         paymentdomain.TxnExpensePayment,
		Amount:       10,
		CurrencyCode: "USD",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidDate)
}

func TestCreateTransactionReferenceIsTaggedPair(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))
	seedCurrency(t, svc, "USD")

	// Half-specified references are rejected.
	_, err := svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:          "2026-03-01",
		Type:          paymentdomain.TxnInvoiceReceipt,
		Amount:        10,
		CurrencyCode:  "USD",
		ReferenceType: "invoice",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidReference)

	_, err = svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:          "2026-03-01",
		Type:          paymentdomain.TxnInvoiceReceipt,
		Amount:        10,
		CurrencyCode:  "USD",
		ReferenceType: "subscription",
		ReferenceID:   "12345",
	})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidReference)

	txn, err := svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
		Date:          "2026-03-01",
		Type:          paymentdomain.TxnInvoiceReceipt,
		Amount:        10,
		CurrencyCode:  "USD",
		ReferenceType: "invoice",
		ReferenceID:   "12345",
	})
	require.NoError(t, err)
	require.NotNil(t, txn.ReferenceType)
	assert.Equal(t, paymentdomain.RefInvoice, *txn.ReferenceType)
}

func TestDuplicateCurrencyCodeRejected(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.CreateCurrency(ctx, paymentdomain.CurrencyInput{Code: "BTC", Name: "Bitcoin", IsCrypto: true})
	require.NoError(t, err)

	_, err = svc.CreateCurrency(ctx, paymentdomain.CurrencyInput{Code: "btc", Name: "Bitcoin again"})
	assert.ErrorIs(t, err, paymentdomain.ErrDuplicateCode)
}

func TestTransactionFilterByType(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))
	seedCurrency(t, svc, "USD")

	for _, txnType := range []paymentdomain.TransactionType{
		paymentdomain.TxnInvoiceReceipt,
		paymentdomain.TxnPurchasePayment,
		paymentdomain.TxnExpensePayment,
	} {
		_, err := svc.CreateTransaction(ctx, paymentdomain.TransactionInput{
			Date:         "2026-03-01",
			Type:         txnType,
			Amount:       10,
			CurrencyCode: "USD",
		})
		require.NoError(t, err)
	}

	incoming, err := svc.ListTransactions(ctx, paymentdomain.TransactionFilter{
		Type: paymentdomain.TxnInvoiceReceipt,
	})
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.True(t, incoming[0].TransactionType.Incoming())

	all, err := svc.ListTransactions(ctx, paymentdomain.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
