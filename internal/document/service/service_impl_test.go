package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	documentdomain "github.com/smallbiznis/finbook/internal/document/domain"
	documentrepo "github.com/smallbiznis/finbook/internal/document/repository"
	documentservice "github.com/smallbiznis/finbook/internal/document/service"
	partydomain "github.com/smallbiznis/finbook/internal/party/domain"
	partyrepo "github.com/smallbiznis/finbook/internal/party/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, table := range []string{"customers", "vendors"} {
		err = db.Table(table).AutoMigrate(&partydomain.Party{})
		require.NoError(t, err)
	}
	for _, table := range []string{"invoices", "purchase_invoices"} {
		err = db.Table(table).AutoMigrate(&documentdomain.Document{})
		require.NoError(t, err)
	}
	for _, table := range []string{"invoice_items", "purchase_invoice_items"} {
		err = db.Table(table).AutoMigrate(&documentdomain.Line{})
		require.NoError(t, err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) documentdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	return documentservice.New(documentservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      documentrepo.Provide(),
		PartyRepo: partyrepo.Provide(),
	})
}

func TestCreateComputesTotals(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	doc, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:     "2026-03-10",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines: []documentdomain.LineInput{
			{ItemName: "SKU-1", Quantity: 2, Price: 100, VATRate: 20},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 200, doc.Subtotal, 1e-9)
	assert.InDelta(t, 40, doc.VATTotal, 1e-9)
	assert.InDelta(t, 240, doc.Total, 1e-9)
	assert.InDelta(t, doc.Subtotal+doc.VATTotal, doc.Total, 1e-9)
	require.Len(t, doc.Lines, 1)
	assert.InDelta(t, 240, doc.Lines[0].LineTotal, 1e-9)
}

func TestDocumentDateValidated(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:     "10/03/2026",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines:    []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: 5}},
	})
	assert.ErrorIs(t, err, documentdomain.ErrInvalidDate)

	created, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:     "  2026-03-10  ",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines:    []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", created.DocDate)

	_, err = svc.Update(ctx, documentdomain.KindInvoice, documentdomain.UpdateDocumentRequest{
		ID:   created.ID.String(),
		Date: "2026-13-40",
	})
	assert.ErrorIs(t, err, documentdomain.ErrInvalidDate)
}

func TestCreateRejectsEmptyAndInvalidLines(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	base := documentdomain.CreateDocumentRequest{
		Date:     "2026-03-10",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
	}

	_, err := svc.Create(ctx, documentdomain.KindInvoice, base)
	assert.ErrorIs(t, err, documentdomain.ErrNoLines)

	withLines := base
	withLines.Lines = []documentdomain.LineInput{{ItemName: "x", Quantity: 0, Price: 10}}
	_, err = svc.Create(ctx, documentdomain.KindInvoice, withLines)
	assert.ErrorIs(t, err, documentdomain.ErrInvalidQuantity)

	withLines.Lines = []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: -1}}
	_, err = svc.Create(ctx, documentdomain.KindInvoice, withLines)
	assert.ErrorIs(t, err, documentdomain.ErrInvalidPrice)

	withLines.Lines = []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: 1, VATRate: -5}}
	_, err = svc.Create(ctx, documentdomain.KindInvoice, withLines)
	assert.ErrorIs(t, err, documentdomain.ErrInvalidVATRate)
}

func TestRoundTripPreservesLineOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	lines := []documentdomain.LineInput{
		{ItemName: "first", Quantity: 1, Price: 10},
		{ItemName: "second", Quantity: 2, Price: 20},
		{ItemName: "third", Quantity: 3, Price: 30},
	}
	created, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:     "2026-01-05",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines:    lines,
	})
	require.NoError(t, err)

	fetched, err := svc.GetByID(ctx, documentdomain.KindInvoice, created.ID.String())
	require.NoError(t, err)
	require.Len(t, fetched.Lines, 3)
	for i, line := range fetched.Lines {
		assert.Equal(t, lines[i].ItemName, line.ItemName)
		assert.InDelta(t, lines[i].Quantity, line.Quantity, 1e-9)
	}
}

func TestRequestedNumberHonoredWhenFree(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	doc, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Number:   "INV-0001",
		Date:     "2026-02-01",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines:    []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", doc.Number)

	// The same requested number on a second create is already taken and a
	// generated one is substituted.
	second, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Number:   "INV-0001",
		Date:     "2026-02-02",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines:    []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: 5}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, "INV-0001", second.Number)
	assert.NotEmpty(t, second.Number)
}

func TestUpdateReplacesLines(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	created, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:     "2026-02-01",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines: []documentdomain.LineInput{
			{ItemName: "old-a", Quantity: 1, Price: 10},
			{ItemName: "old-b", Quantity: 1, Price: 20},
		},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, documentdomain.KindInvoice, documentdomain.UpdateDocumentRequest{
		ID:   created.ID.String(),
		Date: "2026-02-03",
		Lines: []documentdomain.LineInput{
			{ItemName: "new-only", Quantity: 4, Price: 25, VATRate: 10},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 1)
	assert.Equal(t, "new-only", updated.Lines[0].ItemName)
	assert.InDelta(t, 100, updated.Subtotal, 1e-9)
	assert.InDelta(t, 10, updated.VATTotal, 1e-9)
	assert.InDelta(t, 110, updated.Total, 1e-9)
	assert.Equal(t, "2026-02-03", updated.DocDate)
}

func TestDeleteRemovesLines(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	created, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:     "2026-02-01",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines: []documentdomain.LineInput{
			{ItemName: "a", Quantity: 1, Price: 10},
			{ItemName: "b", Quantity: 1, Price: 20},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, documentdomain.KindInvoice, created.ID.String()))

	_, err = svc.GetByID(ctx, documentdomain.KindInvoice, created.ID.String())
	assert.ErrorIs(t, err, documentdomain.ErrNotFound)

	var orphans int64
	require.NoError(t, db.Table("invoice_items").
		Where("document_id = ?", created.ID).
		Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestSnapshotCopiedFromParty(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	party := partydomain.Party{
		ID:        node.Generate(),
		Number:    "CUS-TEST0001",
		Name:      "Original Name",
		TaxNumber: "TAX-42",
		Country:   "DE",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Table("customers").Create(&party).Error)

	created, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:    "2026-02-01",
		PartyID: party.ID.String(),
		Lines:   []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Original Name", created.PartyName)
	assert.Equal(t, "TAX-42", created.PartyTaxNumber)

	// Renaming the party afterwards must not rewrite the document.
	require.NoError(t, db.Table("customers").
		Where("id = ?", party.ID).
		Update("name", "Renamed").Error)

	fetched, err := svc.GetByID(ctx, documentdomain.KindInvoice, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Original Name", fetched.PartyName)
}

func TestPurchaseAndInvoiceNumbersIndependent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	inv, err := svc.Create(ctx, documentdomain.KindInvoice, documentdomain.CreateDocumentRequest{
		Date:     "2026-02-01",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Acme Ltd"},
		Lines:    []documentdomain.LineInput{{ItemName: "x", Quantity: 1, Price: 5}},
	})
	require.NoError(t, err)

	pur, err := svc.Create(ctx, documentdomain.KindPurchase, documentdomain.CreateDocumentRequest{
		Date:     "2026-02-01",
		Snapshot: documentdomain.PartySnapshot{PartyName: "Supplier GmbH"},
		Lines:    []documentdomain.LineInput{{ItemName: "y", Quantity: 1, Price: 7}},
	})
	require.NoError(t, err)

	assert.Contains(t, inv.Number, "INV-")
	assert.Contains(t, pur.Number, "PUR-")
}
