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
	itemdomain "github.com/smallbiznis/finbook/internal/item/domain"
	itemrepo "github.com/smallbiznis/finbook/internal/item/repository"
	itemservice "github.com/smallbiznis/finbook/internal/item/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNode *snowflake.Node

func init() {
	var err error
	testNode, err = snowflake.NewNode(4)
	if err != nil {
		panic(err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_item_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	require.NoError(t, db.AutoMigrate(&itemdomain.Item{}))
	for _, table := range []string{"invoice_items", "purchase_invoice_items"} {
		require.NoError(t, db.Table(table).AutoMigrate(&documentdomain.Line{}))
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) itemdomain.Service {
	t.Helper()
	return itemservice.New(itemservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testNode,
		Repo:  itemrepo.Provide(),
	})
}

func TestCreateAssignsNumber(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	item, err := svc.Create(ctx, itemdomain.CreateItemRequest{
		Name:    "  Widget  ",
		Price:   9.5,
		VATRate: 20,
		Unit:    "pcs",
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget", item.Name)
	assert.True(t, strings.HasPrefix(item.ItemNumber, "ITM-"), "got %q", item.ItemNumber)
	assert.Len(t, item.ItemNumber, len("ITM-")+8)

	got, err := svc.GetByID(ctx, item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, item.ItemNumber, got.ItemNumber)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.Create(ctx, itemdomain.CreateItemRequest{Name: "   "})
	assert.ErrorIs(t, err, itemdomain.ErrInvalidName)

	_, err = svc.Create(ctx, itemdomain.CreateItemRequest{Name: "x", Price: -1})
	assert.ErrorIs(t, err, itemdomain.ErrInvalidPrice)

	_, err = svc.Create(ctx, itemdomain.CreateItemRequest{Name: "x", VATRate: -5})
	assert.ErrorIs(t, err, itemdomain.ErrInvalidVATRate)
}

func TestUpdateKeepsNumber(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	item, err := svc.Create(ctx, itemdomain.CreateItemRequest{Name: "Widget", Price: 10})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, itemdomain.UpdateItemRequest{
		ID:      item.ID.String(),
		Name:    "Gadget",
		Price:   12,
		VATRate: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", updated.Name)
	assert.Equal(t, item.ItemNumber, updated.ItemNumber)
	assert.InDelta(t, 18, updated.VATRate, 1e-9)
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	item, err := svc.Create(ctx, itemdomain.CreateItemRequest{Name: "Widget"})
	require.NoError(t, err)

	line := documentdomain.Line{
		ID:         testNode.Generate(),
		DocumentID: testNode.Generate(),
		ItemID:     &item.ID,
		ItemName:   item.Name,
		Quantity:   2,
		Price:      10,
		LineTotal:  20,
	}
	require.NoError(t, db.Table("invoice_items").Create(&line).Error)

	err = svc.Delete(ctx, item.ID.String())
	assert.ErrorIs(t, err, itemdomain.ErrReferenced)

	require.NoError(t, db.Table("invoice_items").Delete(nil, "id = ?", line.ID).Error)
	require.NoError(t, svc.Delete(ctx, item.ID.String()))

	_, err = svc.GetByID(ctx, item.ID.String())
	assert.ErrorIs(t, err, itemdomain.ErrNotFound)
}

func TestDeleteChecksPurchaseLinesToo(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	item, err := svc.Create(ctx, itemdomain.CreateItemRequest{Name: "Widget"})
	require.NoError(t, err)

	line := documentdomain.Line{
		ID:         testNode.Generate(),
		DocumentID: testNode.Generate(),
		ItemID:     &item.ID,
		ItemName:   item.Name,
		Quantity:   1,
		Price:      5,
		LineTotal:  5,
	}
	require.NoError(t, db.Table("purchase_invoice_items").Create(&line).Error)

	err = svc.Delete(ctx, item.ID.String())
	assert.ErrorIs(t, err, itemdomain.ErrReferenced)
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, itemdomain.ErrInvalidID)
}
