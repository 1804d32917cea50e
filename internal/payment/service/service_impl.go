package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/payment/domain"
	"github.com/smallbiznis/finbook/pkg/db"
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
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateMethod(ctx context.Context, in domain.MethodInput) (domain.Method, error) {
	method, err := validateMethod(in)
	if err != nil {
		return domain.Method{}, err
	}

	method.ID = s.genID.Generate()
	method.CreatedAt = time.Now().UTC()

	if err := s.repo.InsertMethod(ctx, s.db, &method); err != nil {
		return domain.Method{}, err
	}

	s.log.Info("payment method created",
		zap.String("method_id", method.ID.String()),
		zap.String("method_type", string(method.MethodType)),
	)
	return method, nil
}

func (s *Service) ListMethods(ctx context.Context) ([]domain.Method, error) {
	return s.repo.FindMethods(ctx, s.db)
}

func (s *Service) GetMethod(ctx context.Context, id string) (domain.Method, error) {
	methodID, err := parseID(id)
	if err != nil {
		return domain.Method{}, err
	}

	method, err := s.repo.FindMethodByID(ctx, s.db, methodID)
	if err != nil {
		return domain.Method{}, err
	}
	if method == nil {
		return domain.Method{}, domain.ErrMethodNotFound
	}
	return *method, nil
}

func (s *Service) UpdateMethod(ctx context.Context, id string, in domain.MethodInput) (domain.Method, error) {
	current, err := s.GetMethod(ctx, id)
	if err != nil {
		return domain.Method{}, err
	}

	updated, err := validateMethod(in)
	if err != nil {
		return domain.Method{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt

	if err := s.repo.UpdateMethod(ctx, s.db, &updated); err != nil {
		return domain.Method{}, err
	}
	return updated, nil
}

// DeleteMethod removes a payment method. Transactions and expenses that
// point at it keep their method_id; lookups on those records resolve to
// nothing afterwards.
func (s *Service) DeleteMethod(ctx context.Context, id string) error {
	method, err := s.GetMethod(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteMethod(ctx, s.db, method.ID)
}

func (s *Service) CreateCurrency(ctx context.Context, in domain.CurrencyInput) (domain.Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return domain.Currency{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Currency{}, domain.ErrInvalidName
	}

	currency := domain.Currency{
		ID:        s.genID.Generate(),
		Code:      code,
		Name:      name,
		Symbol:    strings.TrimSpace(in.Symbol),
		IsCrypto:  in.IsCrypto,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.InsertCurrency(ctx, s.db, &currency); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Currency{}, domain.ErrDuplicateCode
		}
		return domain.Currency{}, err
	}
	return currency, nil
}

func (s *Service) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return s.repo.FindCurrencies(ctx, s.db)
}

func (s *Service) DeleteCurrency(ctx context.Context, id string) error {
	currencyID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.DeleteCurrency(ctx, s.db, currencyID)
}

func (s *Service) CreateTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	txn, err := s.validateTransaction(ctx, in)
	if err != nil {
		return domain.Transaction{}, err
	}

	txn.ID = s.genID.Generate()
	txn.CreatedAt = time.Now().UTC()

	if err := s.repo.InsertTransaction(ctx, s.db, &txn); err != nil {
		return domain.Transaction{}, err
	}

	s.log.Info("transaction recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("transaction_type", string(txn.TransactionType)),
		zap.Float64("amount", txn.Amount),
		zap.String("currency", txn.CurrencyCode),
	)
	return txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	return s.repo.FindTransactions(ctx, s.db, filter)
}

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	txnID, err := parseID(id)
	if err != nil {
		return domain.Transaction{}, err
	}

	txn, err := s.repo.FindTransactionByID(ctx, s.db, txnID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if txn == nil {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}
	return *txn, nil
}

// DeleteTransaction removes a ledger entry. The referenced document's
// outstanding balance simply grows back on the next read.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteTransaction(ctx, s.db, txn.ID)
}

func validateMethod(in domain.MethodInput) (domain.Method, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Method{}, domain.ErrInvalidName
	}
	if !in.MethodType.Valid() {
		return domain.Method{}, domain.ErrInvalidMethodType
	}
	return domain.Method{
		Name:              name,
		MethodType:        in.MethodType,
		AccountIdentifier: strings.TrimSpace(in.AccountIdentifier),
		Details:           strings.TrimSpace(in.Details),
	}, nil
}

func (s *Service) validateTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	date := strings.TrimSpace(in.Date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.Transaction{}, domain.ErrInvalidDate
	}
	if !in.Type.Valid() {
		return domain.Transaction{}, domain.ErrInvalidTransactionType
	}
	if in.Amount <= 0 {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	code := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	currency, err := s.repo.FindCurrencyByCode(ctx, s.db, code)
	if err != nil {
		return domain.Transaction{}, err
	}
	if currency == nil {
		return domain.Transaction{}, domain.ErrUnknownCurrency
	}

	txn := domain.Transaction{
		TransactionDate: date,
		TransactionType: in.Type,
		Amount:          in.Amount,
		CurrencyCode:    code,
		Notes:           strings.TrimSpace(in.Notes),
	}

	refType := strings.TrimSpace(in.ReferenceType)
	refID := strings.TrimSpace(in.ReferenceID)
	if refType != "" || refID != "" {
		// A half-specified reference is rejected rather than stored.
		if refType == "" || refID == "" {
			return domain.Transaction{}, domain.ErrInvalidReference
		}
		rt := domain.ReferenceType(refType)
		if !rt.Valid() {
			return domain.Transaction{}, domain.ErrInvalidReference
		}
		id, err := snowflake.ParseString(refID)
		if err != nil {
			return domain.Transaction{}, domain.ErrInvalidReference
		}
		txn.ReferenceType = &rt
		txn.ReferenceID = &id
	}

	if methodID := strings.TrimSpace(in.MethodID); methodID != "" {
		id, err := parseID(methodID)
		if err != nil {
			return domain.Transaction{}, err
		}
		method, err := s.repo.FindMethodByID(ctx, s.db, id)
		if err != nil {
			return domain.Transaction{}, err
		}
		if method == nil {
			return domain.Transaction{}, domain.ErrUnknownMethod
		}
		txn.MethodID = &id
	}

	return txn, nil
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed, nil
}
