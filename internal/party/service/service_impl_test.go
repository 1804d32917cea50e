package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	documentdomain "github.com/smallbiznis/finbook/internal/document/domain"
	partydomain "github.com/smallbiznis/finbook/internal/party/domain"
	partyrepo "github.com/smallbiznis/finbook/internal/party/repository"
	partyservice "github.com/smallbiznis/finbook/internal/party/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNode *snowflake.Node

func init() {
	var err error
	testNode, err = snowflake.NewNode(5)
	if err != nil {
		panic(err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_party_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, table := range []string{"customers", "vendors"} {
		require.NoError(t, db.Table(table).AutoMigrate(&partydomain.Party{}))
	}
	for _, table := range []string{"invoices", "purchase_invoices"} {
		require.NoError(t, db.Table(table).AutoMigrate(&documentdomain.Document{}))
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) partydomain.Service {
	t.Helper()
	return partyservice.New(partyservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testNode,
		Repo:  partyrepo.Provide(),
	})
}

func TestCreateNumbersPerKind(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	customer, err := svc.Create(ctx, partydomain.KindCustomer, partydomain.PartyInput{Name: "Acme"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(customer.Number, "CUS-"), "got %q", customer.Number)
	assert.Equal(t, partydomain.PartyTypeCompany, customer.PartyType)

	vendor, err := svc.Create(ctx, partydomain.KindVendor, partydomain.PartyInput{
		Name:      "Supplies Inc",
		PartyType: "individual",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(vendor.Number, "VEN-"), "got %q", vendor.Number)
	assert.Equal(t, partydomain.PartyTypeIndividual, vendor.PartyType)
}

func TestKindsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	customer, err := svc.Create(ctx, partydomain.KindCustomer, partydomain.PartyInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, partydomain.KindVendor, customer.ID.String())
	assert.ErrorIs(t, err, partydomain.ErrNotFound)

	vendors, err := svc.List(ctx, partydomain.KindVendor)
	require.NoError(t, err)
	assert.Empty(t, vendors)

	customers, err := svc.List(ctx, partydomain.KindCustomer)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.ID, customers[0].ID)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.Create(ctx, partydomain.Kind("supplier"), partydomain.PartyInput{Name: "x"})
	assert.ErrorIs(t, err, partydomain.ErrInvalidKind)

	_, err = svc.Create(ctx, partydomain.KindCustomer, partydomain.PartyInput{Name: "  "})
	assert.ErrorIs(t, err, partydomain.ErrInvalidName)

	_, err = svc.Create(ctx, partydomain.KindCustomer, partydomain.PartyInput{Name: "x", PartyType: "llc"})
	assert.ErrorIs(t, err, partydomain.ErrInvalidType)
}

func TestUpdateKeepsNumber(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	customer, err := svc.Create(ctx, partydomain.KindCustomer, partydomain.PartyInput{Name: "Acme"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, partydomain.KindCustomer, customer.ID.String(), partydomain.PartyInput{
		Name:      "Acme Corp",
		TaxNumber: "TR-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "TR-123", updated.TaxNumber)
	assert.Equal(t, customer.Number, updated.Number)
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	customer, err := svc.Create(ctx, partydomain.KindCustomer, partydomain.PartyInput{Name: "Acme"})
	require.NoError(t, err)

	doc := documentdomain.Document{
		ID:      testNode.Generate(),
		Number:  "INV-REF00001",
		DocDate: "2026-03-01",
		PartySnapshot: documentdomain.PartySnapshot{
			PartyID:   &customer.ID,
			PartyName: customer.Name,
		},
	}
	require.NoError(t, db.Table("invoices").Create(&doc).Error)

	err = svc.Delete(ctx, partydomain.KindCustomer, customer.ID.String())
	assert.ErrorIs(t, err, partydomain.ErrReferenced)

	require.NoError(t, db.Table("invoices").Delete(nil, "id = ?", doc.ID).Error)
	require.NoError(t, svc.Delete(ctx, partydomain.KindCustomer, customer.ID.String()))

	_, err = svc.GetByID(ctx, partydomain.KindCustomer, customer.ID.String())
	assert.ErrorIs(t, err, partydomain.ErrNotFound)
}

func TestVendorDeleteChecksPurchases(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	vendor, err := svc.Create(ctx, partydomain.KindVendor, partydomain.PartyInput{Name: "Supplies Inc"})
	require.NoError(t, err)

	doc := documentdomain.Document{
		ID:      testNode.Generate(),
		Number:  "PUR-REF00001",
		DocDate: "2026-03-01",
		PartySnapshot: documentdomain.PartySnapshot{
			PartyID:   &vendor.ID,
			PartyName: vendor.Name,
		},
	}
	require.NoError(t, db.Table("purchase_invoices").Create(&doc).Error)

	err = svc.Delete(ctx, partydomain.KindVendor, vendor.ID.String())
	assert.ErrorIs(t, err, partydomain.ErrReferenced)
}
