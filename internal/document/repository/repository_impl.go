package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/document/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertDocument(ctx context.Context, db *gorm.DB, kind domain.Kind, doc *domain.Document) error {
	return db.WithContext(ctx).Table(kind.TableName()).Create(doc).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, kind domain.Kind, lines []domain.Line) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Table(kind.LineTableName()).Create(&lines).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (*domain.Document, error) {
	return r.findOne(ctx, db, kind, "id = ?", id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, kind domain.Kind, number string) (*domain.Document, error) {
	return r.findOne(ctx, db, kind, "number = ?", number)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, kind domain.Kind, cond string, arg any) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).
		Table(kind.TableName()).
		Where(cond, arg).
		Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repo) FetchLines(ctx context.Context, db *gorm.DB, kind domain.Kind, docID snowflake.ID) ([]domain.Line, error) {
	var lines []domain.Line
	err := db.WithContext(ctx).
		Table(kind.LineTableName()).
		Where("document_id = ?", docID).
		Order("position asc, id asc").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, kind domain.Kind, filter domain.ListFilter) ([]domain.Document, error) {
	stmt := db.WithContext(ctx).Table(kind.TableName())
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("number LIKE ? OR party_name LIKE ?", like, like)
	}
	if filter.DateFrom != "" {
		stmt = stmt.Where("doc_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		stmt = stmt.Where("doc_date <= ?", filter.DateTo)
	}

	var docs []domain.Document
	err := stmt.Order("id desc").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repo) UpdateHeader(ctx context.Context, db *gorm.DB, kind domain.Kind, doc *domain.Document) error {
	return db.WithContext(ctx).
		Table(kind.TableName()).
		Where("id = ?", doc.ID).
		Updates(map[string]any{
			"number":            doc.Number,
			"doc_date":          doc.DocDate,
			"party_id":          doc.PartyID,
			"party_name":        doc.PartyName,
			"party_tax_number":  doc.PartyTaxNumber,
			"registration_name": doc.RegistrationName,
			"phone_number":      doc.PhoneNumber,
			"address":           doc.Address,
			"website":           doc.Website,
			"country":           doc.Country,
			"address_2":         doc.Address2,
			"subtotal":          doc.Subtotal,
			"vat_total":         doc.VATTotal,
			"total":             doc.Total,
		}).Error
}

func (r *repo) DeleteLines(ctx context.Context, db *gorm.DB, kind domain.Kind, docID snowflake.ID) error {
	return db.WithContext(ctx).
		Table(kind.LineTableName()).
		Where("document_id = ?", docID).
		Delete(nil).Error
}

func (r *repo) DeleteDocument(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) error {
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
