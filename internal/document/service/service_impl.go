package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/document/domain"
	"github.com/smallbiznis/finbook/internal/numbering"
	partydomain "github.com/smallbiznis/finbook/internal/party/domain"
	"github.com/smallbiznis/finbook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// insertRetries bounds how often a create is retried after losing a
// number race to a concurrent insert.
const insertRetries = 3

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	PartyRepo partydomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	partyRepo partydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("document.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		partyRepo: p.PartyRepo,
	}
}

func (s *Service) Create(ctx context.Context, kind domain.Kind, req domain.CreateDocumentRequest) (domain.Document, error) {
	if !kind.Valid() {
		return domain.Document{}, domain.ErrInvalidKind
	}

	date, err := normalizeDate(req.Date)
	if err != nil {
		return domain.Document{}, err
	}

	snapshot, err := s.resolveSnapshot(ctx, kind, req.PartyID, req.Snapshot)
	if err != nil {
		return domain.Document{}, err
	}

	if len(req.Lines) == 0 {
		return domain.Document{}, domain.ErrNoLines
	}

	doc := domain.Document{
		ID:            s.genID.Generate(),
		DocDate:       date,
		PartySnapshot: snapshot,
		CreatedAt:     time.Now().UTC(),
	}

	lines, err := s.buildLines(ctx, doc.ID, req.Lines)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Subtotal, doc.VATTotal, doc.Total = Totals(lines)

	number, err := s.resolveNumber(ctx, kind, req.Number)
	if err != nil {
		return domain.Document{}, err
	}

	// The unique constraint on the number column is the backstop for
	// concurrent creates; losing the race costs one fresh candidate.
	for attempt := 0; ; attempt++ {
		doc.Number = number
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.InsertDocument(ctx, tx, kind, &doc); err != nil {
				return err
			}
			return s.repo.InsertLines(ctx, tx, kind, lines)
		})
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.Document{}, err
		}
		if attempt >= insertRetries {
			return domain.Document{}, domain.ErrDuplicateNumber
		}
		s.log.Warn("document number collision, retrying",
			zap.String("kind", string(kind)),
			zap.String("number", number),
		)
		number, err = s.generateNumber(ctx, kind)
		if err != nil {
			return domain.Document{}, err
		}
	}

	doc.Lines = lines
	return doc, nil
}

func (s *Service) GetByID(ctx context.Context, kind domain.Kind, id string) (domain.Document, error) {
	if !kind.Valid() {
		return domain.Document{}, domain.ErrInvalidKind
	}

	parsed, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}

	doc, err := s.repo.FindByID(ctx, s.db, kind, parsed)
	if err != nil {
		return domain.Document{}, err
	}
	if doc == nil {
		return domain.Document{}, domain.ErrNotFound
	}
	return s.withLines(ctx, kind, *doc)
}

func (s *Service) GetByNumber(ctx context.Context, kind domain.Kind, number string) (domain.Document, error) {
	if !kind.Valid() {
		return domain.Document{}, domain.ErrInvalidKind
	}

	number = strings.TrimSpace(number)
	if number == "" {
		return domain.Document{}, domain.ErrNotFound
	}

	doc, err := s.repo.FindByNumber(ctx, s.db, kind, number)
	if err != nil {
		return domain.Document{}, err
	}
	if doc == nil {
		return domain.Document{}, domain.ErrNotFound
	}
	return s.withLines(ctx, kind, *doc)
}

func (s *Service) List(ctx context.Context, kind domain.Kind, filter domain.ListFilter) ([]domain.Document, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	return s.repo.List(ctx, s.db, kind, filter)
}

func (s *Service) Update(ctx context.Context, kind domain.Kind, req domain.UpdateDocumentRequest) (domain.Document, error) {
	if !kind.Valid() {
		return domain.Document{}, domain.ErrInvalidKind
	}

	parsed, err := parseID(req.ID)
	if err != nil {
		return domain.Document{}, err
	}

	doc, err := s.repo.FindByID(ctx, s.db, kind, parsed)
	if err != nil {
		return domain.Document{}, err
	}
	if doc == nil {
		return domain.Document{}, domain.ErrNotFound
	}

	if req.Date != "" {
		date, err := normalizeDate(req.Date)
		if err != nil {
			return domain.Document{}, err
		}
		doc.DocDate = date
	}

	if partyID := strings.TrimSpace(req.PartyID); partyID != "" || req.Snapshot != nil {
		var override domain.PartySnapshot
		if req.Snapshot != nil {
			override = *req.Snapshot
		}
		snapshot, err := s.resolveSnapshot(ctx, kind, partyID, override)
		if err != nil {
			return domain.Document{}, err
		}
		doc.PartySnapshot = snapshot
	}

	if number := strings.TrimSpace(req.Number); number != "" && number != doc.Number {
		taken, err := s.repo.NumberTaken(ctx, s.db, kind, number)
		if err != nil {
			return domain.Document{}, err
		}
		if taken {
			// Requested number already in use; keep the current one.
			s.log.Warn("requested number taken, keeping existing",
				zap.String("kind", string(kind)),
				zap.String("requested", number),
			)
		} else {
			doc.Number = number
		}
	}

	var lines []domain.Line
	if req.Lines != nil {
		if len(req.Lines) == 0 {
			return domain.Document{}, domain.ErrNoLines
		}
		lines, err = s.buildLines(ctx, doc.ID, req.Lines)
		if err != nil {
			return domain.Document{}, err
		}
		doc.Subtotal, doc.VATTotal, doc.Total = Totals(lines)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if lines != nil {
			if err := s.repo.DeleteLines(ctx, tx, kind, doc.ID); err != nil {
				return err
			}
			if err := s.repo.InsertLines(ctx, tx, kind, lines); err != nil {
				return err
			}
		}
		return s.repo.UpdateHeader(ctx, tx, kind, doc)
	})
	if err != nil {
		return domain.Document{}, err
	}

	if lines != nil {
		doc.Lines = lines
		return *doc, nil
	}
	return s.withLines(ctx, kind, *doc)
}

// Delete removes the document and its lines. Payment transactions that
// reference it are left in place; the reference is advisory.
func (s *Service) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if !kind.Valid() {
		return domain.ErrInvalidKind
	}

	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	doc, err := s.repo.FindByID(ctx, s.db, kind, parsed)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteLines(ctx, tx, kind, parsed); err != nil {
			return err
		}
		return s.repo.DeleteDocument(ctx, tx, kind, parsed)
	})
}

func (s *Service) withLines(ctx context.Context, kind domain.Kind, doc domain.Document) (domain.Document, error) {
	lines, err := s.repo.FetchLines(ctx, s.db, kind, doc.ID)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Lines = lines
	return doc, nil
}

func (s *Service) buildLines(ctx context.Context, docID snowflake.ID, inputs []domain.LineInput) ([]domain.Line, error) {
	lines := make([]domain.Line, 0, len(inputs))
	for position, input := range inputs {
		name := strings.TrimSpace(input.ItemName)
		if name == "" {
			return nil, domain.ErrNoLines
		}
		if input.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if input.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		if input.VATRate < 0 {
			return nil, domain.ErrInvalidVATRate
		}

		var itemID *snowflake.ID
		if trimmed := strings.TrimSpace(input.ItemID); trimmed != "" {
			parsed, err := snowflake.ParseString(trimmed)
			if err != nil || parsed == 0 {
				return nil, domain.ErrInvalidID
			}
			itemID = &parsed
		}

		lines = append(lines, domain.Line{
			ID:         s.genID.Generate(),
			DocumentID: docID,
			ItemID:     itemID,
			ItemName:   name,
			Quantity:   input.Quantity,
			Unit:       strings.TrimSpace(input.Unit),
			Price:      input.Price,
			VATRate:    input.VATRate,
			LineTotal:  LineTotal(input.Quantity, input.Price, input.VATRate),
			Position:   position,
		})
	}
	return lines, nil
}

func (s *Service) resolveSnapshot(ctx context.Context, kind domain.Kind, partyID string, override domain.PartySnapshot) (domain.PartySnapshot, error) {
	partyID = strings.TrimSpace(partyID)
	if partyID == "" {
		if strings.TrimSpace(override.PartyName) == "" {
			return domain.PartySnapshot{}, domain.ErrInvalidParty
		}
		override.PartyID = nil
		return override, nil
	}

	parsed, err := snowflake.ParseString(partyID)
	if err != nil || parsed == 0 {
		return domain.PartySnapshot{}, domain.ErrInvalidParty
	}

	partyKind := partydomain.KindCustomer
	if kind == domain.KindPurchase {
		partyKind = partydomain.KindVendor
	}

	party, err := s.partyRepo.FindByID(ctx, s.db, partyKind, parsed)
	if err != nil {
		return domain.PartySnapshot{}, err
	}
	if party == nil {
		return domain.PartySnapshot{}, domain.ErrInvalidParty
	}

	return domain.PartySnapshot{
		PartyID:          &party.ID,
		PartyName:        party.Name,
		PartyTaxNumber:   party.TaxNumber,
		RegistrationName: party.RegistrationName,
		PhoneNumber:      party.PhoneNumber,
		Address:          party.Address,
		Website:          party.Website,
		Country:          party.Country,
		Address2:         party.Address2,
	}, nil
}

// resolveNumber honors a requested number when it is free and quietly
// generates a fresh one when it is not.
func (s *Service) resolveNumber(ctx context.Context, kind domain.Kind, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		taken, err := s.repo.NumberTaken(ctx, s.db, kind, requested)
		if err != nil {
			return "", err
		}
		if !taken {
			return requested, nil
		}
	}
	return s.generateNumber(ctx, kind)
}

func (s *Service) generateNumber(ctx context.Context, kind domain.Kind) (string, error) {
	prefix := numbering.PrefixInvoice
	if kind == domain.KindPurchase {
		prefix = numbering.PrefixPurchase
	}
	return numbering.Next(ctx, prefix, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.NumberTaken(ctx, s.db, kind, candidate)
	})
}

// LineTotal computes one line's gross amount. VAT is a percentage of the
// line net.
func LineTotal(quantity, price, vatRate float64) float64 {
	net := quantity * price
	return net + net*vatRate/100
}

// Totals sums the denormalized header aggregates from the line set.
func Totals(lines []domain.Line) (subtotal, vatTotal, total float64) {
	for _, line := range lines {
		net := line.Quantity * line.Price
		subtotal += net
		vatTotal += net * line.VATRate / 100
	}
	total = subtotal + vatTotal
	return subtotal, vatTotal, total
}

func normalizeDate(value string) (string, error) {
	date := strings.TrimSpace(value)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", domain.ErrInvalidDate
	}
	return date, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
