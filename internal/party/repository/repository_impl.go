package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/party/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, kind domain.Kind, party *domain.Party) error {
	return db.WithContext(ctx).Table(kind.TableName()).Create(party).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (*domain.Party, error) {
	var party domain.Party
	err := db.WithContext(ctx).
		Table(kind.TableName()).
		Where("id = ?", id).
		Take(&party).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &party, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, kind domain.Kind) ([]domain.Party, error) {
	var parties []domain.Party
	err := db.WithContext(ctx).
		Table(kind.TableName()).
		Order("id desc").
		Find(&parties).Error
	if err != nil {
		return nil, err
	}
	return parties, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, kind domain.Kind, party *domain.Party) error {
	return db.WithContext(ctx).
		Table(kind.TableName()).
		Where("id = ?", party.ID).
		Updates(map[string]any{
			"party_type":        party.PartyType,
			"name":              party.Name,
			"tax_number":        party.TaxNumber,
			"registration_name": party.RegistrationName,
			"phone_number":      party.PhoneNumber,
			"address":           party.Address,
			"website":           party.Website,
			"country":           party.Country,
			"address_2":         party.Address2,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) error {
	return db.WithContext(ctx).
		Table(kind.TableName()).
		Where("id = ?", id).
		Delete(nil).Error
}

func (r *repo) NumberTaken(ctx context.Context, db *gorm.DB, kind domain.Kind, number string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Table(kind.TableName()).
		Where("number = ?", number).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) ReferencedByDocuments(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (bool, error) {
	docTable := "invoices"
	if kind == domain.KindVendor {
		docTable = "purchase_invoices"
	}
	var count int64
	err := db.WithContext(ctx).
		Table(docTable).
		Where("party_id = ?", id).
		Count(&count).Error
	return count > 0, err
}
