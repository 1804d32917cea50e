package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/expense/domain"
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
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.ExpenseInput) (domain.Expense, error) {
	expense, err := s.validate(input)
	if err != nil {
		return domain.Expense{}, err
	}

	number, err := numbering.Next(ctx, numbering.PrefixExpense, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.NumberTaken(ctx, s.db, candidate)
	})
	if err != nil {
		return domain.Expense{}, err
	}

	expense.ID = s.genID.Generate()
	expense.ExpenseNumber = number
	expense.CreatedAt = time.Now().UTC()

	if err := s.repo.Insert(ctx, s.db, &expense); err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Expense, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Expense, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.Expense{}, err
	}

	expense, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Expense{}, err
	}
	if expense == nil {
		return domain.Expense{}, domain.ErrNotFound
	}
	return *expense, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.ExpenseInput) (domain.Expense, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.Expense{}, err
	}

	updated, err := s.validate(input)
	if err != nil {
		return domain.Expense{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Expense{}, err
	}
	if existing == nil {
		return domain.Expense{}, domain.ErrNotFound
	}

	existing.ExpenseDate = updated.ExpenseDate
	existing.Title = updated.Title
	existing.Category = updated.Category
	existing.PaymentMethodID = updated.PaymentMethodID
	existing.Amount = updated.Amount
	existing.Notes = updated.Notes

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Expense{}, err
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

	return s.repo.Delete(ctx, s.db, parsed)
}

func (s *Service) validate(input domain.ExpenseInput) (domain.Expense, error) {
	date := strings.TrimSpace(input.Date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.Expense{}, domain.ErrInvalidDate
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Expense{}, domain.ErrInvalidTitle
	}

	if input.Amount < 0 {
		return domain.Expense{}, domain.ErrInvalidAmount
	}

	var methodID *snowflake.ID
	if trimmed := strings.TrimSpace(input.PaymentMethodID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil || parsed == 0 {
			return domain.Expense{}, domain.ErrInvalidID
		}
		methodID = &parsed
	}

	return domain.Expense{
		ExpenseDate:     date,
		Title:           title,
		Category:        strings.TrimSpace(input.Category),
		PaymentMethodID: methodID,
		Amount:          input.Amount,
		Notes:           strings.TrimSpace(input.Notes),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
