// Package domain defines the read models produced by the reporting
// queries. Reports never mutate anything; every figure is derived from
// documents, expenses, and payment transactions at query time.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// PaidEpsilon is the tolerance under which an outstanding balance counts
// as settled, absorbing float rounding from repeated partial payments.
const PaidEpsilon = 0.01

// Period selects the dashboard aggregation window.
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	default:
		return false
	}
}

var ErrInvalidPeriod = errors.New("invalid_period")

// DocumentSummary is one invoice or purchase row with its payment
// coverage resolved.
type DocumentSummary struct {
	ID          snowflake.ID `json:"id"`
	Number      string       `json:"number"`
	Date        string       `json:"date"`
	PartyName   string       `json:"party_name"`
	Total       float64      `json:"total"`
	Paid        float64      `json:"paid"`
	Outstanding float64      `json:"outstanding"`
	IsPaid      bool         `json:"is_paid"`
}

// TurnoverPoint is one bucket of the turnover series.
type TurnoverPoint struct {
	Bucket    string  `json:"bucket"`
	Sales     float64 `json:"sales"`
	Purchases float64 `json:"purchases"`
	Expenses  float64 `json:"expenses"`
}

// StockAlert flags an item whose net stock (purchased minus sold
// quantity) has fallen to the alert threshold.
type StockAlert struct {
	ItemID     snowflake.ID `json:"item_id"`
	ItemNumber string       `json:"item_number"`
	Name       string       `json:"name"`
	Stock      float64      `json:"stock"`
}

// Dashboard is the period overview. Trend fields are percentage change
// against the previous period of the same length.
type Dashboard struct {
	Period Period `json:"period"`

	Sales     float64 `json:"sales"`
	Purchases float64 `json:"purchases"`
	Expenses  float64 `json:"expenses"`
	NetProfit float64 `json:"net_profit"`

	SalesTrend     float64 `json:"sales_trend"`
	PurchasesTrend float64 `json:"purchases_trend"`
	ExpensesTrend  float64 `json:"expenses_trend"`
	ProfitTrend    float64 `json:"profit_trend"`

	Receivables float64 `json:"receivables"`
	Payables    float64 `json:"payables"`

	PaymentsIn  float64 `json:"payments_in"`
	PaymentsOut float64 `json:"payments_out"`

	VATReceived float64 `json:"vat_received"`
	VATPaid     float64 `json:"vat_paid"`

	Turnover []TurnoverPoint `json:"turnover"`

	RecentInvoices  []DocumentSummary `json:"recent_invoices"`
	RecentPurchases []DocumentSummary `json:"recent_purchases"`

	StockAlerts []StockAlert `json:"stock_alerts"`
}

// VATEntry is one document in the VAT register. RecognizedVAT prorates
// vat_total by payment coverage, capped at full coverage.
type VATEntry struct {
	Number        string  `json:"number"`
	Date          string  `json:"date"`
	Direction     string  `json:"direction"`
	VATTotal      float64 `json:"vat_total"`
	Total         float64 `json:"total"`
	Paid          float64 `json:"paid"`
	Coverage      float64 `json:"coverage"`
	RecognizedVAT float64 `json:"recognized_vat"`
}

// VATQuarter rolls the register up per calendar quarter.
type VATQuarter struct {
	Quarter string  `json:"quarter"`
	Output  float64 `json:"output"`
	Input   float64 `json:"input"`
	Net     float64 `json:"net"`
}

// Summary is the all-time report.
type Summary struct {
	TotalSold     float64 `json:"total_sold"`
	TotalBought   float64 `json:"total_bought"`
	TotalExpenses float64 `json:"total_expenses"`
	Benefit       float64 `json:"benefit"`
	Receivable    float64 `json:"receivable"`
	Owed          float64 `json:"owed"`

	VATRegister  []VATEntry   `json:"vat_register"`
	VATQuarterly []VATQuarter `json:"vat_quarterly"`

	MonthlyTurnover []TurnoverPoint `json:"monthly_turnover"`
	YearlyTurnover  []TurnoverPoint `json:"yearly_turnover"`
}

type Service interface {
	Dashboard(ctx context.Context, period Period) (Dashboard, error)
	Summary(ctx context.Context) (Summary, error)
}
