package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stockAlertThreshold is the net quantity at or below which an item
// shows up on the dashboard.
const stockAlertThreshold = 5.0

const recentDocuments = 5

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("report.service"),
	}
}

// coverageRow carries one document header with its payment sum resolved
// by a correlated subquery, so the same shape serves invoices and
// purchases on every supported dialect.
type coverageRow struct {
	ID        int64
	Number    string
	Date      string
	PartyName string
	Total     float64
	VATTotal  float64
	Paid      float64
}

type bucketRow struct {
	Bucket string
	Amount float64
}

func (s *Service) Dashboard(ctx context.Context, period domain.Period) (domain.Dashboard, error) {
	if period == "" {
		period = domain.PeriodMonth
	}
	if !period.Valid() {
		return domain.Dashboard{}, domain.ErrInvalidPeriod
	}

	now := time.Now().UTC()
	start, end, prevStart, prevEnd := periodRange(period, now)

	d := domain.Dashboard{Period: period}

	var err error
	if d.Sales, err = s.sumDocuments(ctx, "invoices", start, end); err != nil {
		return domain.Dashboard{}, err
	}
	if d.Purchases, err = s.sumDocuments(ctx, "purchase_invoices", start, end); err != nil {
		return domain.Dashboard{}, err
	}
	if d.Expenses, err = s.sumExpenses(ctx, start, end); err != nil {
		return domain.Dashboard{}, err
	}
	d.NetProfit = d.Sales - d.Purchases - d.Expenses

	prevSales, err := s.sumDocuments(ctx, "invoices", prevStart, prevEnd)
	if err != nil {
		return domain.Dashboard{}, err
	}
	prevPurchases, err := s.sumDocuments(ctx, "purchase_invoices", prevStart, prevEnd)
	if err != nil {
		return domain.Dashboard{}, err
	}
	prevExpenses, err := s.sumExpenses(ctx, prevStart, prevEnd)
	if err != nil {
		return domain.Dashboard{}, err
	}
	d.SalesTrend = trend(d.Sales, prevSales)
	d.PurchasesTrend = trend(d.Purchases, prevPurchases)
	d.ExpensesTrend = trend(d.Expenses, prevExpenses)
	d.ProfitTrend = trend(d.NetProfit, prevSales-prevPurchases-prevExpenses)

	if d.Receivables, err = s.openBalance(ctx, "invoices", "invoice"); err != nil {
		return domain.Dashboard{}, err
	}
	if d.Payables, err = s.openBalance(ctx, "purchase_invoices", "purchase"); err != nil {
		return domain.Dashboard{}, err
	}

	if d.PaymentsIn, err = s.sumPayments(ctx, []string{"invoice_receipt"}, start, end); err != nil {
		return domain.Dashboard{}, err
	}
	if d.PaymentsOut, err = s.sumPayments(ctx, []string{"purchase_payment", "expense_payment"}, start, end); err != nil {
		return domain.Dashboard{}, err
	}

	if d.VATReceived, err = s.periodVAT(ctx, "invoices", "invoice", "invoice_receipt", start, end); err != nil {
		return domain.Dashboard{}, err
	}
	if d.VATPaid, err = s.periodVAT(ctx, "purchase_invoices", "purchase", "purchase_payment", start, end); err != nil {
		return domain.Dashboard{}, err
	}

	if d.Turnover, err = s.monthlySeries(ctx, now); err != nil {
		return domain.Dashboard{}, err
	}

	recentInv, err := s.coverage(ctx, "invoices", "invoice", "", "", recentDocuments)
	if err != nil {
		return domain.Dashboard{}, err
	}
	recentPur, err := s.coverage(ctx, "purchase_invoices", "purchase", "", "", recentDocuments)
	if err != nil {
		return domain.Dashboard{}, err
	}
	d.RecentInvoices = summaries(recentInv)
	d.RecentPurchases = summaries(recentPur)

	if d.StockAlerts, err = s.stockAlerts(ctx); err != nil {
		return domain.Dashboard{}, err
	}

	return d, nil
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	var err error

	if sum.TotalSold, err = s.sumDocuments(ctx, "invoices", "", ""); err != nil {
		return domain.Summary{}, err
	}
	if sum.TotalBought, err = s.sumDocuments(ctx, "purchase_invoices", "", ""); err != nil {
		return domain.Summary{}, err
	}
	if sum.TotalExpenses, err = s.sumExpenses(ctx, "", ""); err != nil {
		return domain.Summary{}, err
	}
	sum.Benefit = sum.TotalSold - sum.TotalBought - sum.TotalExpenses

	if sum.Receivable, err = s.openBalance(ctx, "invoices", "invoice"); err != nil {
		return domain.Summary{}, err
	}
	if sum.Owed, err = s.openBalance(ctx, "purchase_invoices", "purchase"); err != nil {
		return domain.Summary{}, err
	}

	invoiceRows, err := s.coverage(ctx, "invoices", "invoice", "", "", 0)
	if err != nil {
		return domain.Summary{}, err
	}
	purchaseRows, err := s.coverage(ctx, "purchase_invoices", "purchase", "", "", 0)
	if err != nil {
		return domain.Summary{}, err
	}

	sum.VATRegister = vatRegister(invoiceRows, purchaseRows)
	sum.VATQuarterly = vatQuarters(sum.VATRegister)

	if sum.MonthlyTurnover, err = s.turnover(ctx, 7); err != nil {
		return domain.Summary{}, err
	}
	if sum.YearlyTurnover, err = s.turnover(ctx, 4); err != nil {
		return domain.Summary{}, err
	}

	return sum, nil
}

func (s *Service) sumDocuments(ctx context.Context, table, from, to string) (float64, error) {
	query := fmt.Sprintf("SELECT COALESCE(SUM(total), 0) FROM %s", table)
	args := []interface{}{}
	if from != "" {
		query += " WHERE doc_date >= ? AND doc_date < ?"
		args = append(args, from, to)
	}

	var total float64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) sumExpenses(ctx context.Context, from, to string) (float64, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM expenses"
	args := []interface{}{}
	if from != "" {
		query += " WHERE expense_date >= ? AND expense_date < ?"
		args = append(args, from, to)
	}

	var total float64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) sumPayments(ctx context.Context, types []string, from, to string) (float64, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM payment_transactions WHERE transaction_type IN ?"
	args := []interface{}{types}
	if from != "" {
		query += " AND transaction_date >= ? AND transaction_date < ?"
		args = append(args, from, to)
	}

	var total float64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// openBalance is the raw aggregate of document totals minus the payments
// referencing that document type. Overpaid documents pull the aggregate
// down; per-document listings clamp at zero instead.
func (s *Service) openBalance(ctx context.Context, table, refType string) (float64, error) {
	totals, err := s.sumDocuments(ctx, table, "", "")
	if err != nil {
		return 0, err
	}

	var paid float64
	err = s.db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(amount), 0) FROM payment_transactions WHERE reference_type = ?", refType).
		Scan(&paid).Error
	if err != nil {
		return 0, err
	}
	return totals - paid, nil
}

// periodVAT recognizes VAT on a cash basis: each payment dated inside the
// period contributes the referenced document's VAT share of its amount,
// regardless of when the document itself was issued.
func (s *Service) periodVAT(ctx context.Context, table, refType, txnType, from, to string) (float64, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(
		CASE WHEN d.total > 0 THEN d.vat_total / d.total * t.amount ELSE 0 END), 0)
	FROM payment_transactions t
	JOIN %s d ON d.id = t.reference_id
	WHERE t.reference_type = ? AND t.transaction_type = ?
		AND t.transaction_date >= ? AND t.transaction_date < ?`, table)

	var total float64
	err := s.db.WithContext(ctx).Raw(query, refType, txnType, from, to).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) coverage(ctx context.Context, table, refType, from, to string, limit int) ([]coverageRow, error) {
	query := fmt.Sprintf(`SELECT d.id, d.number, d.doc_date AS date, d.party_name,
		d.total, d.vat_total,
		COALESCE((SELECT SUM(t.amount) FROM payment_transactions t
			WHERE t.reference_type = ? AND t.reference_id = d.id), 0) AS paid
	FROM %s d`, table)
	args := []interface{}{refType}
	if from != "" {
		query += " WHERE d.doc_date >= ? AND d.doc_date < ?"
		args = append(args, from, to)
	}
	query += " ORDER BY d.doc_date DESC, d.id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []coverageRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) monthlySeries(ctx context.Context, now time.Time) ([]domain.TurnoverPoint, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	from := first.Format("2006-01-02")

	sales, err := s.bucketSums(ctx, "invoices", "doc_date", "total", 7, from)
	if err != nil {
		return nil, err
	}
	purchases, err := s.bucketSums(ctx, "purchase_invoices", "doc_date", "total", 7, from)
	if err != nil {
		return nil, err
	}
	expenses, err := s.bucketSums(ctx, "expenses", "expense_date", "amount", 7, from)
	if err != nil {
		return nil, err
	}

	points := make([]domain.TurnoverPoint, 0, 12)
	for i := 0; i < 12; i++ {
		bucket := first.AddDate(0, i, 0).Format("2006-01")
		points = append(points, domain.TurnoverPoint{
			Bucket:    bucket,
			Sales:     sales[bucket],
			Purchases: purchases[bucket],
			Expenses:  expenses[bucket],
		})
	}
	return points, nil
}

// turnover groups all rows by a date-string prefix: 7 characters for
// YYYY-MM buckets, 4 for YYYY.
func (s *Service) turnover(ctx context.Context, prefixLen int) ([]domain.TurnoverPoint, error) {
	sales, err := s.bucketSums(ctx, "invoices", "doc_date", "total", prefixLen, "")
	if err != nil {
		return nil, err
	}
	purchases, err := s.bucketSums(ctx, "purchase_invoices", "doc_date", "total", prefixLen, "")
	if err != nil {
		return nil, err
	}
	expenses, err := s.bucketSums(ctx, "expenses", "expense_date", "amount", prefixLen, "")
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	for bucket := range sales {
		seen[bucket] = struct{}{}
	}
	for bucket := range purchases {
		seen[bucket] = struct{}{}
	}
	for bucket := range expenses {
		seen[bucket] = struct{}{}
	}

	buckets := make([]string, 0, len(seen))
	for bucket := range seen {
		buckets = append(buckets, bucket)
	}
	sort.Strings(buckets)

	points := make([]domain.TurnoverPoint, 0, len(buckets))
	for _, bucket := range buckets {
		points = append(points, domain.TurnoverPoint{
			Bucket:    bucket,
			Sales:     sales[bucket],
			Purchases: purchases[bucket],
			Expenses:  expenses[bucket],
		})
	}
	return points, nil
}

func (s *Service) bucketSums(ctx context.Context, table, dateCol, amountCol string, prefixLen int, from string) (map[string]float64, error) {
	query := fmt.Sprintf(
		"SELECT substr(%s, 1, %d) AS bucket, COALESCE(SUM(%s), 0) AS amount FROM %s",
		dateCol, prefixLen, amountCol, table,
	)
	args := []interface{}{}
	if from != "" {
		query += fmt.Sprintf(" WHERE %s >= ?", dateCol)
		args = append(args, from)
	}
	query += " GROUP BY bucket"

	var rows []bucketRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[string]float64, len(rows))
	for _, row := range rows {
		sums[row.Bucket] = row.Amount
	}
	return sums, nil
}

func (s *Service) stockAlerts(ctx context.Context) ([]domain.StockAlert, error) {
	query := `SELECT items.id AS item_id, items.item_number, items.name,
		COALESCE((SELECT SUM(l.quantity) FROM purchase_invoice_items l WHERE l.item_id = items.id), 0)
		- COALESCE((SELECT SUM(l.quantity) FROM invoice_items l WHERE l.item_id = items.id), 0) AS stock
	FROM items ORDER BY items.name ASC`

	var rows []domain.StockAlert
	if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}

	alerts := rows[:0]
	for _, row := range rows {
		if row.Stock <= stockAlertThreshold {
			alerts = append(alerts, row)
		}
	}
	return alerts, nil
}

func periodRange(period domain.Period, now time.Time) (start, end, prevStart, prevEnd string) {
	var s0, e0, p0 time.Time
	switch period {
	case domain.PeriodQuarter:
		q := (int(now.Month()) - 1) / 3
		s0 = time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
		e0 = s0.AddDate(0, 3, 0)
		p0 = s0.AddDate(0, -3, 0)
	case domain.PeriodYear:
		s0 = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		e0 = s0.AddDate(1, 0, 0)
		p0 = s0.AddDate(-1, 0, 0)
	default:
		s0 = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		e0 = s0.AddDate(0, 1, 0)
		p0 = s0.AddDate(0, -1, 0)
	}

	const layout = "2006-01-02"
	return s0.Format(layout), e0.Format(layout), p0.Format(layout), s0.Format(layout)
}

func trend(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

func summaries(rows []coverageRow) []domain.DocumentSummary {
	out := make([]domain.DocumentSummary, 0, len(rows))
	for _, row := range rows {
		outstanding := row.Total - row.Paid
		if outstanding < 0 {
			outstanding = 0
		}
		out = append(out, domain.DocumentSummary{
			ID:          snowflake.ID(row.ID),
			Number:      row.Number,
			Date:        row.Date,
			PartyName:   row.PartyName,
			Total:       row.Total,
			Paid:        row.Paid,
			Outstanding: outstanding,
			IsPaid:      outstanding <= domain.PaidEpsilon,
		})
	}
	return out
}

func vatRegister(invoices, purchases []coverageRow) []domain.VATEntry {
	entries := make([]domain.VATEntry, 0, len(invoices)+len(purchases))
	for _, row := range invoices {
		entries = append(entries, vatEntry(row, "output"))
	}
	for _, row := range purchases {
		entries = append(entries, vatEntry(row, "input"))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].Number < entries[j].Number
	})
	return entries
}

func vatEntry(row coverageRow, direction string) domain.VATEntry {
	coverage := 0.0
	if row.Total > 0 {
		coverage = row.Paid / row.Total
		if coverage > 1 {
			coverage = 1
		}
	}
	return domain.VATEntry{
		Number:        row.Number,
		Date:          row.Date,
		Direction:     direction,
		VATTotal:      row.VATTotal,
		Total:         row.Total,
		Paid:          row.Paid,
		Coverage:      coverage,
		RecognizedVAT: row.VATTotal * coverage,
	}
}

func vatQuarters(entries []domain.VATEntry) []domain.VATQuarter {
	byQuarter := map[string]*domain.VATQuarter{}
	for _, entry := range entries {
		key := quarterKey(entry.Date)
		if key == "" {
			continue
		}
		q, ok := byQuarter[key]
		if !ok {
			q = &domain.VATQuarter{Quarter: key}
			byQuarter[key] = q
		}
		if entry.Direction == "output" {
			q.Output += entry.RecognizedVAT
		} else {
			q.Input += entry.RecognizedVAT
		}
	}

	keys := make([]string, 0, len(byQuarter))
	for key := range byQuarter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	quarters := make([]domain.VATQuarter, 0, len(keys))
	for _, key := range keys {
		q := byQuarter[key]
		q.Net = q.Output - q.Input
		quarters = append(quarters, *q)
	}
	return quarters
}

func quarterKey(date string) string {
	if len(date) < 7 {
		return ""
	}
	month, err := strconv.Atoi(date[5:7])
	if err != nil || month < 1 || month > 12 {
		return ""
	}
	return fmt.Sprintf("%s-Q%d", date[:4], (month-1)/3+1)
}
