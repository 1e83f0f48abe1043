package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("payment not found")
	ErrReceiptNotFound = core.NewNotFoundError("receipt not found")
	ErrDuplicateMatric = core.NewConflictError("Payment already exists for this matric number")

	statsCacheKey = "payments:stats"
)

type (
	Repository interface {
		// CreatePayment fails with ErrDuplicateMatric when the matric number already has a payment.
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		MatricExists(ctx context.Context, matric string) (bool, error)
		GetPayment(ctx context.Context, id int) (Payment, error)
		HasApprovedPayment(ctx context.Context, matric string) (bool, error)
		// QueryPayments returns one page of payments, newest first, and the total matching the filter.
		QueryPayments(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Payment, int, error)
		AllPayments(ctx context.Context) ([]Payment, error)
		CountPayments(ctx context.Context, status Status) (int, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		DeletePayment(ctx context.Context, id int) error
		PaymentStats(ctx context.Context) (Stats, error)
	}

	// ReceiptStore keeps uploaded receipt files by name.
	ReceiptStore interface {
		Save(ctx context.Context, name string, content []byte) error
		Open(ctx context.Context, name string) (io.ReadCloser, error)
		Delete(ctx context.Context, name string) error
	}

	// ThumbnailStore is implemented by receipt stores that keep image previews.
	ThumbnailStore interface {
		OpenThumbnail(ctx context.Context, name string) (io.ReadCloser, error)
	}

	Service struct {
		repo    Repository
		store   ReceiptStore
		mailSvc core.EmailService
		cache   core.Cache
		logger  core.Logger
		catalog Catalog
	}
)

func NewService(
	repo Repository,
	store ReceiptStore,
	mailSvc core.EmailService,
	cache core.Cache,
	logger core.Logger,
) *Service {
	return &Service{
		repo:    repo,
		store:   store,
		mailSvc: mailSvc,
		cache:   cache,
		logger:  logger,
		catalog: DefaultCatalog,
	}
}

func (svc *Service) Catalog() Catalog { return svc.catalog }

// Quote prices a selection of catalog items for a level.
func (svc *Service) Quote(level int, ids []string) (Summary, error) {
	calc := NewCalculator(svc.catalog)
	calc.SetLevel(level)
	if err := calc.Select(ids...); err != nil {
		return Summary{}, err
	}
	return calc.Summary(), nil
}

// ReceiptName is the stored name of a receipt: {matric}_{YYYYmmdd_HHMMSS}_{filename}.
func ReceiptName(matric string, r *Receipt, at time.Time) string {
	base := SecureFilename(r.Filename)
	if base == "" {
		base = "receipt" + mimetype.Detect(r.Content).Extension()
	}
	return SecureFilename(fmt.Sprintf("%s_%s_%s", matric, at.Format("20060102_150405"), base))
}

// Submit records a validated submission: one payment per matric number.
func (svc *Service) Submit(ctx context.Context, np NewPayment) (Payment, error) {
	exists, err := svc.repo.MatricExists(ctx, np.MatricNumber)
	if err != nil {
		return Payment{}, errors.Wrap(err, "checking matric number")
	}
	if exists {
		return Payment{}, ErrDuplicateMatric
	}

	now := nowFunc().UTC()
	receiptName := ReceiptName(np.MatricNumber, np.Receipt, now)
	if err = svc.store.Save(ctx, receiptName, np.Receipt.Content); err != nil {
		return Payment{}, errors.Wrap(err, "saving receipt")
	}

	p := Payment{
		FullName:        np.FullName,
		MatricNumber:    np.MatricNumber,
		Level:           np.LevelInt(),
		Email:           np.Email,
		PhoneNumber:     np.PhoneNumber,
		TransactionRef:  np.TransactionRef,
		PaymentDate:     np.PaymentDate,
		ReceiptFilename: receiptName,
		Items:           np.Items,
		TotalAmount:     np.TotalAmount,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if p, err = svc.repo.CreatePayment(ctx, p); err != nil {
		if delErr := svc.store.Delete(ctx, receiptName); delErr != nil {
			svc.logger.Warn(fmt.Sprintf("removing orphan receipt %s", receiptName), delErr)
		}
		return Payment{}, errors.Wrap(err, "creating payment")
	}

	svc.invalidateStats(ctx)
	svc.mailSvc.SendMessages(paymentMessage("Payment received", "payment_received", p))
	return p, nil
}

func (svc *Service) Get(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPayment(ctx, id)
}

type Page struct {
	Payments []Payment `json:"payments"`
	core.PageInfo
}

func (svc *Service) List(ctx context.Context, filter QueryFilter, paging core.Paging) (Page, error) {
	filter.Clean()
	paging.Clean()
	payments, total, err := svc.repo.QueryPayments(ctx, filter, paging)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []Payment{}
	}
	return Page{Payments: payments, PageInfo: core.NewPageInfo(paging, total)}, nil
}

// Recent returns the n newest payments.
func (svc *Service) Recent(ctx context.Context, n int) ([]Payment, error) {
	page, err := svc.List(ctx, QueryFilter{}, core.Paging{Page: 1, PerPage: n})
	return page.Payments, err
}

// Count counts payments in status, or all of them when status is empty.
func (svc *Service) Count(ctx context.Context, status Status) (int, error) {
	return svc.repo.CountPayments(ctx, status)
}

func (svc *Service) HasApprovedPayment(ctx context.Context, matric string) (bool, error) {
	return svc.repo.HasApprovedPayment(ctx, core.CleanString(matric))
}

func (svc *Service) UpdateStatus(ctx context.Context, id int, status Status) (Payment, error) {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	prev := p.Status
	p.Status = status
	p.UpdatedAt = nowFunc().UTC()
	if p, err = svc.repo.UpdatePayment(ctx, p); err != nil {
		return Payment{}, errors.Wrap(err, "updating payment status")
	}

	svc.invalidateStats(ctx)
	if prev != status {
		svc.mailSvc.SendMessages(paymentMessage("Payment "+string(status), "payment_status", p))
	}
	return p, nil
}

func (svc *Service) Edit(ctx context.Context, id int, up UpdatePayment) (Payment, error) {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	p = up.apply(p)
	p.UpdatedAt = nowFunc().UTC()
	if p, err = svc.repo.UpdatePayment(ctx, p); err != nil {
		return Payment{}, errors.Wrap(err, "updating payment")
	}
	svc.invalidateStats(ctx)
	return p, nil
}

// Delete removes the payment and its receipt file.
func (svc *Service) Delete(ctx context.Context, id int) error {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeletePayment(ctx, id); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	if p.HasReceipt() {
		if err = svc.store.Delete(ctx, p.ReceiptFilename); err != nil {
			svc.logger.Warn(fmt.Sprintf("removing receipt %s", p.ReceiptFilename), err)
		}
	}
	svc.invalidateStats(ctx)
	return nil
}

// Receipt opens the receipt of a payment for download.
func (svc *Service) Receipt(ctx context.Context, id int) (io.ReadCloser, Payment, error) {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, Payment{}, err
	}
	if !p.HasReceipt() {
		return nil, p, ErrReceiptNotFound
	}
	rc, err := svc.store.Open(ctx, p.ReceiptFilename)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, p, ErrReceiptNotFound
		}
		return nil, p, errors.Wrap(err, "opening receipt")
	}
	return rc, p, nil
}

// ReceiptThumbnail opens the preview of an image receipt.
func (svc *Service) ReceiptThumbnail(ctx context.Context, id int) (io.ReadCloser, error) {
	ts, ok := svc.store.(ThumbnailStore)
	if !ok {
		return nil, ErrReceiptNotFound
	}
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.HasReceipt() {
		return nil, ErrReceiptNotFound
	}
	rc, err := ts.OpenThumbnail(ctx, p.ReceiptFilename)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, ErrReceiptNotFound
		}
		return nil, errors.Wrap(err, "opening receipt thumbnail")
	}
	return rc, nil
}

// Stats is cached until the next payment write.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if svc.cache != nil {
		if data, ok, err := svc.cache.Get(ctx, statsCacheKey); err != nil {
			svc.logger.Warn("reading payment stats from cache", err)
		} else if ok && json.Unmarshal(data, &st) == nil {
			return st, nil
		}
	}

	st, err := svc.repo.PaymentStats(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "computing payment stats")
	}

	if svc.cache != nil {
		if data, err := json.Marshal(st); err == nil {
			if err = svc.cache.Set(ctx, statsCacheKey, data, core.Conf.Redis.CacheTTL); err != nil {
				svc.logger.Warn("caching payment stats", err)
			}
		}
	}
	return st, nil
}

func (svc *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	payments, err := svc.repo.AllPayments(ctx)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	return WriteCSV(w, payments)
}

func (svc *Service) invalidateStats(ctx context.Context) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Delete(ctx, statsCacheKey); err != nil {
		svc.logger.Warn("invalidating payment stats", err)
	}
}

type (
	mailItem struct {
		Name   string
		Amount string
	}

	mailData struct {
		ID           int
		FullName     string
		MatricNumber string
		Status       string
		Items        []mailItem
		Total        string
	}
)

func paymentMessage(subject, tmpl string, p Payment) *core.EmailMessage {
	data := mailData{
		ID:           p.ID,
		FullName:     p.FullName,
		MatricNumber: p.MatricNumber,
		Status:       string(p.Status),
		Total:        FormatNaira(p.TotalAmount),
	}
	for _, it := range p.Items {
		data.Items = append(data.Items, mailItem{Name: it.Name, Amount: FormatNaira(it.Amount)})
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: p.FullName, Address: p.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: data,
	}
}
