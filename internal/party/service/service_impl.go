package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/numbering"
	"github.com/smallbiznis/finbook/internal/party/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("party.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, kind domain.Kind, input domain.PartyInput) (domain.Party, error) {
	if !kind.Valid() {
		return domain.Party{}, domain.ErrInvalidKind
	}

	partyType, err := normalizeType(input.PartyType)
	if err != nil {
		return domain.Party{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Party{}, domain.ErrInvalidName
	}

	prefix := numbering.PrefixCustomer
	if kind == domain.KindVendor {
		prefix = numbering.PrefixVendor
	}
	number, err := numbering.Next(ctx, prefix, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.NumberTaken(ctx, s.db, kind, candidate)
	})
	if err != nil {
		return domain.Party{}, err
	}

	party := domain.Party{
		ID:               s.genID.Generate(),
		Number:           number,
		PartyType:        partyType,
		Name:             name,
		TaxNumber:        strings.TrimSpace(input.TaxNumber),
		RegistrationName: strings.TrimSpace(input.RegistrationName),
		PhoneNumber:      strings.TrimSpace(input.PhoneNumber),
		Address:          strings.TrimSpace(input.Address),
		Website:          strings.TrimSpace(input.Website),
		Country:          strings.TrimSpace(input.Country),
		Address2:         strings.TrimSpace(input.Address2),
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, kind, &party); err != nil {
		return domain.Party{}, err
	}

	return party, nil
}

func (s *Service) List(ctx context.Context, kind domain.Kind) ([]domain.Party, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	return s.repo.List(ctx, s.db, kind)
}

func (s *Service) GetByID(ctx context.Context, kind domain.Kind, id string) (domain.Party, error) {
	if !kind.Valid() {
		return domain.Party{}, domain.ErrInvalidKind
	}

	parsed, err := parseID(id)
	if err != nil {
		return domain.Party{}, err
	}

	party, err := s.repo.FindByID(ctx, s.db, kind, parsed)
	if err != nil {
		return domain.Party{}, err
	}
	if party == nil {
		return domain.Party{}, domain.ErrNotFound
	}
	return *party, nil
}

func (s *Service) Update(ctx context.Context, kind domain.Kind, id string, input domain.PartyInput) (domain.Party, error) {
	if !kind.Valid() {
		return domain.Party{}, domain.ErrInvalidKind
	}

	parsed, err := parseID(id)
	if err != nil {
		return domain.Party{}, err
	}

	partyType, err := normalizeType(input.PartyType)
	if err != nil {
		return domain.Party{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Party{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByID(ctx, s.db, kind, parsed)
	if err != nil {
		return domain.Party{}, err
	}
	if existing == nil {
		return domain.Party{}, domain.ErrNotFound
	}

	existing.PartyType = partyType
	existing.Name = name
	existing.TaxNumber = strings.TrimSpace(input.TaxNumber)
	existing.RegistrationName = strings.TrimSpace(input.RegistrationName)
	existing.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	existing.Address = strings.TrimSpace(input.Address)
	existing.Website = strings.TrimSpace(input.Website)
	existing.Country = strings.TrimSpace(input.Country)
	existing.Address2 = strings.TrimSpace(input.Address2)

	if err := s.repo.Update(ctx, s.db, kind, existing); err != nil {
		return domain.Party{}, err
	}
	return *existing, nil
}

// Delete blocks removal while any document still references the party.
// Documents keep their snapshot either way; blocking avoids silent drift
// between the registry and history.
func (s *Service) Delete(ctx context.Context, kind domain.Kind, id string) error {
	if !kind.Valid() {
		return domain.ErrInvalidKind
	}

	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, s.db, kind, parsed)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	referenced, err := s.repo.ReferencedByDocuments(ctx, s.db, kind, parsed)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrReferenced
	}

	return s.repo.Delete(ctx, s.db, kind, parsed)
}

func normalizeType(raw string) (domain.PartyType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "company":
		return domain.PartyTypeCompany, nil
	case "individual":
		return domain.PartyTypeIndividual, nil
	default:
		return "", domain.ErrInvalidType
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
