package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/uiaee/portal/core/form"
	"github.com/uiaee/portal/core/payment"
)

const (
	SubmitLabel     = "Submit Payment"
	ProcessingLabel = "Processing..."
)

// ErrBusy is returned by a click while a submission is in flight.
var ErrBusy = errors.New("a submission is already in progress")

var nowFunc = time.Now // mockable

// Button is the rendered state of the submit control.
type Button struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
}

// Submitter is the view-model of the payment form's submit control. It owns one request at a time.
type Submitter struct {
	client  *Client
	form    *form.Form
	calc    *payment.Calculator
	receipt *payment.ReceiptInput

	mu     sync.Mutex
	busy   bool
	banner *form.Banner
}

func NewSubmitter(c *Client, f *form.Form, calc *payment.Calculator, receipt *payment.ReceiptInput) *Submitter {
	return &Submitter{client: c, form: f, calc: calc, receipt: receipt}
}

func (s *Submitter) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Submitter) Button() Button {
	if s.Busy() {
		return Button{Disabled: true, Label: ProcessingLabel}
	}
	return Button{Label: SubmitLabel}
}

// Banner is the last outcome shown above the form, nil when none.
func (s *Submitter) Banner() *form.Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

func (s *Submitter) DismissBanner() {
	s.mu.Lock()
	s.banner = nil
	s.mu.Unlock()
}

func (s *Submitter) show(kind form.BannerKind, msg string) {
	b := form.NewBanner(kind, msg, nowFunc())
	s.mu.Lock()
	s.banner = &b
	s.mu.Unlock()
}

// Submit handles one click. Local failures block the request: field errors go inline on the form,
// the others to an error banner. A remote outcome always ends with the control enabled again.
func (s *Submitter) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	// one snapshot serves both the check and the upload
	receipt := s.receipt.Current()
	receiptName := ""
	if receipt != nil {
		receiptName = receipt.Filename
	}
	if err := s.form.Input(form.FieldReceipt, receiptName); err != nil {
		return nil, err
	}
	if !s.form.Submit() {
		return nil, &FormError{Fields: s.form.Errors()}
	}
	payload := NewPayload(s.form.Values(), s.calc, receipt)
	res, err := s.client.SubmitPayment(ctx, payload)
	if err != nil {
		if fe, ok := err.(*FormError); ok {
			return nil, fe
		}
		s.show(form.BannerError, errors.Cause(err).Error())
		return nil, err
	}

	switch r := res.(type) {
	case Ok:
		msg := r.Message
		if msg == "" {
			msg = MsgSubmitSucceeded
		}
		if r.PaymentID != "" {
			msg = fmt.Sprintf("%s Your submission ID is: %s", msg, r.PaymentID)
		}
		s.show(form.BannerSuccess, msg)
		s.form.Reset()
		s.calc.Reset()
		_, _ = s.receipt.Change(nil)
	case Err:
		s.show(form.BannerError, r.Reason)
	}
	return res, nil
}
