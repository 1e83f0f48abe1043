package pgrepos

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/payment"
)

const paymentColumns = `id, full_name, matric_number, level, email, phone_number, payment_items, total_amount,
	transaction_ref, payment_date, receipt_filename, status, created_at, updated_at`

type paymentRow struct {
	ID              int         `db:"id"`
	FullName        string      `db:"full_name"`
	MatricNumber    string      `db:"matric_number"`
	Level           int         `db:"level"`
	Email           string      `db:"email"`
	PhoneNumber     string      `db:"phone_number"`
	Items           []byte      `db:"payment_items"`
	TotalAmount     int         `db:"total_amount"`
	TransactionRef  null.String `db:"transaction_ref"`
	PaymentDate     null.Time   `db:"payment_date"`
	ReceiptFilename null.String `db:"receipt_filename"`
	Status          string      `db:"status"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func toPaymentRow(p payment.Payment) (paymentRow, error) {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return paymentRow{}, errors.Wrap(err, "encoding payment items")
	}
	row := paymentRow{
		ID:              p.ID,
		FullName:        p.FullName,
		MatricNumber:    p.MatricNumber,
		Level:           p.Level,
		Email:           p.Email,
		PhoneNumber:     p.PhoneNumber,
		Items:           items,
		TotalAmount:     p.TotalAmount,
		TransactionRef:  null.NewString(p.TransactionRef, p.TransactionRef != ""),
		ReceiptFilename: null.NewString(p.ReceiptFilename, p.ReceiptFilename != ""),
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
	if p.PaymentDate != "" {
		d, err := time.Parse("2006-01-02", p.PaymentDate)
		if err != nil {
			return paymentRow{}, errors.Wrap(err, "parsing payment date")
		}
		row.PaymentDate = null.TimeFrom(d)
	}
	return row, nil
}

func (row paymentRow) payment() (payment.Payment, error) {
	p := payment.Payment{
		ID:              row.ID,
		FullName:        row.FullName,
		MatricNumber:    row.MatricNumber,
		Level:           row.Level,
		Email:           row.Email,
		PhoneNumber:     row.PhoneNumber,
		TotalAmount:     row.TotalAmount,
		TransactionRef:  row.TransactionRef.String,
		ReceiptFilename: row.ReceiptFilename.String,
		Status:          payment.Status(row.Status),
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
	if row.PaymentDate.Valid {
		p.PaymentDate = row.PaymentDate.Time.Format("2006-01-02")
	}
	if err := json.Unmarshal(row.Items, &p.Items); err != nil {
		return payment.Payment{}, errors.Wrapf(err, "decoding items of payment %d", row.ID)
	}
	return p, nil
}

func paymentsFromRows(rows []paymentRow) ([]payment.Payment, error) {
	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		p, err := row.payment()
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

type paymentRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRepository(db sqlx.ExtContext) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	row, err := toPaymentRow(p)
	if err != nil {
		return payment.Payment{}, err
	}
	q := `INSERT INTO payments (full_name, matric_number, level, email, phone_number, payment_items, total_amount,
		transaction_ref, payment_date, receipt_filename, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	err = sqlx.GetContext(ctx, repo.db, &p.ID, q,
		row.FullName, row.MatricNumber, row.Level, row.Email, row.PhoneNumber, row.Items, row.TotalAmount,
		row.TransactionRef, row.PaymentDate, row.ReceiptFilename, row.Status, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return payment.Payment{}, payment.ErrDuplicateMatric
		}
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *paymentRepository) MatricExists(ctx context.Context, matric string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, repo.db, &exists, `SELECT EXISTS (SELECT 1 FROM payments WHERE matric_number = $1)`, matric)
	return exists, errors.Wrap(err, "checking matric number")
}

func (repo *paymentRepository) GetPayment(ctx context.Context, id int) (payment.Payment, error) {
	var row paymentRow
	if err := sqlx.GetContext(ctx, repo.db, &row, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound, "selecting payment")
	}
	return row.payment()
}

func (repo *paymentRepository) HasApprovedPayment(ctx context.Context, matric string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, repo.db, &exists,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE matric_number = $1 AND status = $2)`,
		matric, string(payment.StatusApproved))
	return exists, errors.Wrap(err, "checking approved payment")
}

func (repo *paymentRepository) QueryPayments(
	ctx context.Context,
	filter payment.QueryFilter,
	paging core.Paging,
) ([]payment.Payment, int, error) {
	where := ` WHERE ($1 = '' OR status = $1)
		AND ($2 = '' OR full_name ILIKE $3 OR matric_number ILIKE $3 OR email ILIKE $3)`
	args := []interface{}{string(filter.Status), filter.Search, likePattern(filter.Search)}

	var total int
	if err := sqlx.GetContext(ctx, repo.db, &total, `SELECT COUNT(*) FROM payments`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting payments")
	}

	var rows []paymentRow
	q := `SELECT ` + paymentColumns + ` FROM payments` + where + ` ORDER BY ` + newestFirst + ` LIMIT $4 OFFSET $5`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, append(args, paging.Limit(), paging.Offset())...); err != nil {
		return nil, 0, errors.Wrap(err, "selecting payments")
	}
	payments, err := paymentsFromRows(rows)
	return payments, total, err
}

func (repo *paymentRepository) AllPayments(ctx context.Context) ([]payment.Payment, error) {
	var rows []paymentRow
	q := `SELECT ` + paymentColumns + ` FROM payments ORDER BY ` + newestFirst
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	return paymentsFromRows(rows)
}

func (repo *paymentRepository) CountPayments(ctx context.Context, status payment.Status) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, repo.db, &n, `SELECT COUNT(*) FROM payments WHERE ($1 = '' OR status = $1)`, string(status))
	return n, errors.Wrap(err, "counting payments")
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	row, err := toPaymentRow(p)
	if err != nil {
		return payment.Payment{}, err
	}
	q := `UPDATE payments SET full_name = $2, level = $3, email = $4, phone_number = $5, payment_items = $6,
		total_amount = $7, transaction_ref = $8, payment_date = $9, receipt_filename = $10, status = $11, updated_at = $12
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, row.ID, row.FullName, row.Level, row.Email, row.PhoneNumber, row.Items,
		row.TotalAmount, row.TransactionRef, row.PaymentDate, row.ReceiptFilename, row.Status, row.UpdatedAt)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return errors.Wrap(err, "deleting payment")
}

type aggregateRow struct {
	Key         string `db:"key"`
	Count       int    `db:"count"`
	TotalAmount int    `db:"total_amount"`
}

func (repo *paymentRepository) aggregate(ctx context.Context, keyExpr, order string) ([]aggregateRow, error) {
	var rows []aggregateRow
	q := `SELECT ` + keyExpr + ` AS key, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount
		FROM payments GROUP BY 1 ORDER BY 1 ` + order
	err := sqlx.SelectContext(ctx, repo.db, &rows, q)
	return rows, errors.Wrapf(err, "aggregating payments by %s", keyExpr)
}

func (repo *paymentRepository) PaymentStats(ctx context.Context) (payment.Stats, error) {
	st := payment.Stats{
		ByLevel:  []payment.LevelStat{},
		ByStatus: make([]payment.StatusStat, 0, len(payment.Statuses)),
		ByMonth:  []payment.MonthStat{},
	}

	var totals struct {
		Count          int `db:"count"`
		TotalAmount    int `db:"total_amount"`
		ApprovedAmount int `db:"approved_amount"`
	}
	err := sqlx.GetContext(ctx, repo.db, &totals, `SELECT COUNT(*) AS count,
		COALESCE(SUM(total_amount), 0) AS total_amount,
		COALESCE(SUM(total_amount) FILTER (WHERE status = 'approved'), 0) AS approved_amount
		FROM payments`)
	if err != nil {
		return payment.Stats{}, errors.Wrap(err, "computing payment totals")
	}
	st.Count, st.TotalAmount, st.ApprovedAmount = totals.Count, totals.TotalAmount, totals.ApprovedAmount

	levels, err := repo.aggregate(ctx, "level::text", "")
	if err != nil {
		return payment.Stats{}, err
	}
	for _, r := range levels {
		level, _ := strconv.Atoi(r.Key)
		st.ByLevel = append(st.ByLevel, payment.LevelStat{Level: level, Count: r.Count, TotalAmount: r.TotalAmount})
	}
	sort.Slice(st.ByLevel, func(i, j int) bool { return st.ByLevel[i].Level < st.ByLevel[j].Level })

	statuses, err := repo.aggregate(ctx, "status", "")
	if err != nil {
		return payment.Stats{}, err
	}
	counts := make(map[payment.Status]int, len(statuses))
	for _, r := range statuses {
		counts[payment.Status(r.Key)] = r.Count
	}
	for _, s := range payment.Statuses {
		st.ByStatus = append(st.ByStatus, payment.StatusStat{Status: s, Count: counts[s]})
	}

	months, err := repo.aggregate(ctx, "to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM')", "DESC")
	if err != nil {
		return payment.Stats{}, err
	}
	for _, r := range months {
		st.ByMonth = append(st.ByMonth, payment.MonthStat{Month: r.Key, Count: r.Count, TotalAmount: r.TotalAmount})
	}
	return st, nil
}
