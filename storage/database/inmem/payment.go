package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

// query returns copies, newest first.
func (repo *paymentRepository) query() []payment.Payment {
	payments := make([]payment.Payment, 0, len(repo.db.rows))
	for _, p := range repo.db.rows {
		cp := *p
		cp.Items = append([]payment.PaymentItem(nil), p.Items...)
		payments = append(payments, cp)
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments
}

func (repo *paymentRepository) matricExists(matric string) bool {
	for _, p := range repo.db.rows {
		if p.MatricNumber == matric {
			return true
		}
	}
	return false
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.matricExists(p.MatricNumber) {
		return payment.Payment{}, payment.ErrDuplicateMatric
	}
	p.ID = repo.db.nextPK()
	p.Items = append([]payment.PaymentItem(nil), p.Items...)
	repo.db.rows[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) MatricExists(_ context.Context, matric string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.matricExists(matric), nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id int) (payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.rows[id]; ok {
		cp := *p
		cp.Items = append([]payment.PaymentItem(nil), p.Items...)
		return cp, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) HasApprovedPayment(_ context.Context, matric string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.rows {
		if p.MatricNumber == matric && p.Status == payment.StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (repo *paymentRepository) QueryPayments(
	_ context.Context,
	filter payment.QueryFilter,
	paging core.Paging,
) ([]payment.Payment, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	matches := make([]payment.Payment, 0)
	for _, p := range repo.query() {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FullName), search) &&
			!strings.Contains(p.MatricNumber, search) &&
			!strings.Contains(strings.ToLower(p.Email), search) {
			continue
		}
		matches = append(matches, p)
	}
	start, end := pageBounds(len(matches), paging.Offset(), paging.Limit())
	return matches[start:end], len(matches), nil
}

func (repo *paymentRepository) AllPayments(_ context.Context) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *paymentRepository) CountPayments(_ context.Context, status payment.Status) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, p := range repo.db.rows {
		if status == "" || p.Status == status {
			n++
		}
	}
	return n, nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[p.ID]; !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	p.Items = append([]payment.PaymentItem(nil), p.Items...)
	repo.db.rows[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) DeletePayment(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, id)
	return nil
}

func (repo *paymentRepository) PaymentStats(_ context.Context) (payment.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return payment.ComputeStats(repo.query()), nil
}
