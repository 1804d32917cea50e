package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/item/domain"
	"github.com/smallbiznis/finbook/internal/numbering"
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
		log:   p.Log.Named("item.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Item{}, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return domain.Item{}, domain.ErrInvalidPrice
	}
	if req.VATRate < 0 {
		return domain.Item{}, domain.ErrInvalidVATRate
	}

	number, err := numbering.Next(ctx, numbering.PrefixItem, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.NumberTaken(ctx, s.db, candidate)
	})
	if err != nil {
		return domain.Item{}, err
	}

	item := domain.Item{
		ID:          s.genID.Generate(),
		ItemNumber:  number,
		Name:        name,
		Price:       req.Price,
		VATRate:     req.VATRate,
		Unit:        strings.TrimSpace(req.Unit),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &item); err != nil {
		return domain.Item{}, err
	}

	return item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Item, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Item, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.Item{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Item{}, err
	}
	if item == nil {
		return domain.Item{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateItemRequest) (domain.Item, error) {
	parsed, err := parseID(req.ID)
	if err != nil {
		return domain.Item{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Item{}, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return domain.Item{}, domain.ErrInvalidPrice
	}
	if req.VATRate < 0 {
		return domain.Item{}, domain.ErrInvalidVATRate
	}

	existing, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Item{}, err
	}
	if existing == nil {
		return domain.Item{}, domain.ErrNotFound
	}

	existing.Name = name
	existing.Price = req.Price
	existing.VATRate = req.VATRate
	existing.Unit = strings.TrimSpace(req.Unit)
	existing.Description = strings.TrimSpace(req.Description)

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Item{}, err
	}
	return *existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	referenced, err := s.repo.ReferencedByLines(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrReferenced
	}

	return s.repo.Delete(ctx, s.db, parsed)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
