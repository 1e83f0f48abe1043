package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiaee/portal/core/form"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/testutil"
)

var formValues = map[string]string{
	form.FieldFullName:       "Adaeze Okafor",
	form.FieldMatricNumber:   "234567",
	form.FieldLevel:          "300",
	form.FieldEmail:          "ada@example.com",
	form.FieldPhoneNumber:    "08012345678",
	form.FieldTransactionRef: "TRX-001",
	form.FieldPaymentDate:    "2024-05-01",
	form.FieldReceipt:        "receipt.pdf",
}

func validPayload() Payload {
	calc := payment.NewCalculator(payment.DefaultCatalog)
	calc.SetLevel(300)
	return NewPayload(formValues, calc, &payment.Receipt{Filename: "receipt.pdf", Content: testutil.PDFReceipt()})
}

func TestNewPayload(t *testing.T) {
	p := validPayload()
	assert.Equal(t, "Adaeze Okafor", p.FullName)
	assert.Equal(t, "300", p.Level)
	assert.Equal(t, []payment.PaymentItem{
		{Name: "Departmental Dues", Amount: 5000},
		{Name: "Examination Fee", Amount: 3000},
	}, p.Items)
	assert.Equal(t, 8000, p.TotalAmount)
}

func TestPayload_Check(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *Payload)
		wantErr error
		fields  []string
	}{
		{name: "valid", modify: func(p *Payload) {}},
		{
			name:   "bad fields",
			modify: func(p *Payload) { p.MatricNumber = "12345"; p.Email = "a@b" },
			fields: []string{form.FieldMatricNumber, form.FieldEmail},
		},
		{name: "no receipt", modify: func(p *Payload) { p.Receipt = nil }, wantErr: payment.ErrReceiptMissing},
		{name: "no items", modify: func(p *Payload) { p.Items = nil }, wantErr: payment.ErrNoItems},
		{
			name:    "bad receipt type",
			modify:  func(p *Payload) { p.Receipt = &payment.Receipt{Filename: "notes.txt", Content: []byte("hello there")} },
			wantErr: payment.ErrReceiptType,
		},
		{
			name: "receipt too big",
			modify: func(p *Payload) {
				content := append(testutil.PDFReceipt(), bytes.Repeat([]byte{' '}, payment.MaxReceiptSize)...)
				p.Receipt = &payment.Receipt{Filename: "big.pdf", Content: content}
			},
			wantErr: payment.ErrReceiptSize,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.modify(&p)
			err := p.Check()

			switch {
			case tt.fields != nil:
				var fe *FormError
				require.ErrorAs(t, err, &fe)
				assert.Len(t, fe.Fields, len(tt.fields))
				for _, id := range tt.fields {
					assert.Contains(t, fe.Fields, id)
				}
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_SubmitPayment(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Result
	}{
		{
			name:   "success with numeric id",
			status: http.StatusCreated,
			body:   `{"success": true, "message": "Payment information submitted successfully!", "payment_id": 42}`,
			want:   Ok{Message: "Payment information submitted successfully!", PaymentID: "42"},
		},
		{
			name:   "success with string id",
			status: http.StatusCreated,
			body:   `{"success": true, "message": "ok", "payment_id": "7"}`,
			want:   Ok{Message: "ok", PaymentID: "7"},
		},
		{
			name:   "server error message",
			status: http.StatusConflict,
			body:   `{"success": false, "error": "Payment already exists for this matric number"}`,
			want:   Err{Reason: "Payment already exists for this matric number"},
		},
		{
			name:   "failure without message",
			status: http.StatusBadRequest,
			body:   `{"success": false}`,
			want:   Err{Reason: MsgSubmitFailed},
		},
		{
			name:   "not json",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   Err{Reason: MsgSubmitFailed},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/submit-payment", r.URL.Path)

				require.NoError(t, r.ParseMultipartForm(10<<20))
				assert.Equal(t, "Adaeze Okafor", r.FormValue("fullName"))
				assert.Equal(t, "234567", r.FormValue("matricNumber"))
				assert.Equal(t, "300", r.FormValue("level"))
				assert.Equal(t, "8000", r.FormValue("totalAmount"))
				assert.Equal(t, "2024-05-01", r.FormValue("paymentDate"))

				var items []payment.PaymentItem
				require.NoError(t, json.Unmarshal([]byte(r.FormValue("paymentItems")), &items))
				assert.Len(t, items, 2)

				file, header, err := r.FormFile("receipt")
				require.NoError(t, err)
				defer file.Close()
				content, _ := ioutil.ReadAll(file)
				assert.Equal(t, "receipt.pdf", header.Filename)
				assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
				assert.Equal(t, testutil.PDFReceipt(), content)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := New(srv.URL).SubmitPayment(context.Background(), validPayload())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
			assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_SubmitPayment_preconditions(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	p := validPayload()
	p.Items = nil
	res, err := New(srv.URL).SubmitPayment(context.Background(), p)
	assert.Nil(t, res)
	assert.Equal(t, payment.ErrNoItems, err)

	p = validPayload()
	p.Receipt = nil
	_, err = New(srv.URL).SubmitPayment(context.Background(), p)
	assert.Equal(t, payment.ErrReceiptMissing, err)

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_SubmitPayment_networkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res, err := New(url).SubmitPayment(context.Background(), validPayload())
	require.NoError(t, err)
	assert.Equal(t, Err{Reason: MsgNetworkError}, res)
}

func TestClient_adminUtilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/admin/toggle-student-status":
			assert.EqualValues(t, 3, body["id"])
			assert.Equal(t, true, body["is_active"])
			_, _ = w.Write([]byte(`{"success": true, "message": "Student status updated to approved"}`))
		case "/admin/delete-result":
			assert.EqualValues(t, 9, body["result_id"])
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success": false, "error": "result not found"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("admin-token"), WithHTTPClient(srv.Client()))
	assert.Equal(t, Ok{Message: "Student status updated to approved"}, c.ToggleStudentStatus(context.Background(), 3, true))
	assert.Equal(t, Err{Reason: "result not found"}, c.DeleteResult(context.Background(), 9))
}
