package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiaee/portal/core/form"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/testutil"
)

type submitterFixture struct {
	sub     *Submitter
	form    *form.Form
	calc    *payment.Calculator
	receipt *payment.ReceiptInput
}

func newSubmitterFixture(t *testing.T, url string) submitterFixture {
	f := form.New(form.PaymentForm)
	for id, v := range formValues {
		if id == form.FieldReceipt {
			continue
		}
		require.NoError(t, f.Input(id, v))
	}
	calc := payment.NewCalculator(payment.DefaultCatalog)
	calc.SetLevel(300)
	in := &payment.ReceiptInput{}
	_, err := in.Change([]payment.Receipt{{Filename: "receipt.pdf", Content: testutil.PDFReceipt()}})
	require.NoError(t, err)

	return submitterFixture{sub: NewSubmitter(New(url), f, calc, in), form: f, calc: calc, receipt: in}
}

func TestSubmitter_Submit_success(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success": true, "message": "Payment information submitted successfully!", "payment_id": "12"}`))
	}))
	defer srv.Close()

	fx := newSubmitterFixture(t, srv.URL)
	res, err := fx.sub.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Ok{Message: "Payment information submitted successfully!", PaymentID: "12"}, res)

	if b := fx.sub.Banner(); assert.NotNil(t, b) {
		assert.Equal(t, form.BannerSuccess, b.Kind)
		assert.Equal(t, "Payment information submitted successfully! Your submission ID is: 12", b.Message)
		assert.Equal(t, now, b.ShownAt)
	}
	assert.Equal(t, Button{Label: SubmitLabel}, fx.sub.Button())

	// form, calculator and receipt are back to their initial state
	assert.Equal(t, "", fx.form.Values()[form.FieldFullName])
	assert.Equal(t, 0, fx.calc.Level())
	assert.Nil(t, fx.receipt.Current())
}

func TestSubmitter_Submit_failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success": false, "error": "Payment already exists for this matric number"}`))
	}))
	defer srv.Close()

	fx := newSubmitterFixture(t, srv.URL)
	res, err := fx.sub.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Err{Reason: "Payment already exists for this matric number"}, res)

	if b := fx.sub.Banner(); assert.NotNil(t, b) {
		assert.Equal(t, form.BannerError, b.Kind)
	}
	assert.False(t, fx.sub.Busy())
	// nothing is reset so the user can fix and retry
	assert.Equal(t, "Adaeze Okafor", fx.form.Values()[form.FieldFullName])
	assert.NotNil(t, fx.receipt.Current())
}

func TestSubmitter_Submit_blockedLocally(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	t.Run("invalid field", func(t *testing.T) {
		fx := newSubmitterFixture(t, srv.URL)
		require.NoError(t, fx.form.Input(form.FieldPhoneNumber, "12345"))

		_, err := fx.sub.Submit(context.Background())
		var fe *FormError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "Please enter a valid Nigerian phone number", fe.Fields[form.FieldPhoneNumber])
		assert.Nil(t, fx.sub.Banner())
	})

	t.Run("no items", func(t *testing.T) {
		fx := newSubmitterFixture(t, srv.URL)
		require.NoError(t, fx.calc.Select())

		_, err := fx.sub.Submit(context.Background())
		assert.Equal(t, payment.ErrNoItems, err)
		if b := fx.sub.Banner(); assert.NotNil(t, b) {
			assert.Equal(t, "Please select at least one payment item", b.Message)
		}
	})

	t.Run("no receipt", func(t *testing.T) {
		fx := newSubmitterFixture(t, srv.URL)
		_, _ = fx.receipt.Change(nil)

		_, err := fx.sub.Submit(context.Background())
		var fe *FormError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "Please upload your payment receipt", fe.Fields[form.FieldReceipt])
	})

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSubmitter_Submit_busy(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		close(arrived)
		<-release
		_, _ = w.Write([]byte(`{"success": true, "message": "ok", "payment_id": "1"}`))
	}))
	defer srv.Close()

	fx := newSubmitterFixture(t, srv.URL)
	done := make(chan Result)
	go func() {
		res, _ := fx.sub.Submit(context.Background())
		done <- res
	}()

	<-arrived
	assert.True(t, fx.sub.Busy())
	assert.Equal(t, Button{Disabled: true, Label: ProcessingLabel}, fx.sub.Button())

	res, err := fx.sub.Submit(context.Background())
	assert.Nil(t, res)
	assert.Equal(t, ErrBusy, err)

	close(release)
	assert.IsType(t, Ok{}, <-done)
	assert.False(t, fx.sub.Busy())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
