// Package client talks to the portal server: the payment submission and the admin utilities.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/uiaee/portal/core/form"
	"github.com/uiaee/portal/core/payment"
)

// FormError lists the fields that block a submission, by field ID.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%d field(s) need attention", len(e.Fields))
}

// Payload is everything sent by one payment submission.
type Payload struct {
	FullName       string
	MatricNumber   string
	Level          string
	Email          string
	PhoneNumber    string
	TransactionRef string
	PaymentDate    string
	Items          []payment.PaymentItem
	TotalAmount    int
	Receipt        *payment.Receipt
}

// NewPayload reads the payment form values, the calculator selection and the picked receipt.
func NewPayload(values map[string]string, calc *payment.Calculator, receipt *payment.Receipt) Payload {
	items := calc.Items()
	return Payload{
		FullName:       strings.TrimSpace(values[form.FieldFullName]),
		MatricNumber:   strings.TrimSpace(values[form.FieldMatricNumber]),
		Level:          strings.TrimSpace(values[form.FieldLevel]),
		Email:          strings.TrimSpace(values[form.FieldEmail]),
		PhoneNumber:    strings.TrimSpace(values[form.FieldPhoneNumber]),
		TransactionRef: strings.TrimSpace(values[form.FieldTransactionRef]),
		PaymentDate:    strings.TrimSpace(values[form.FieldPaymentDate]),
		Items:          items,
		TotalAmount:    payment.SumItems(items),
		Receipt:        receipt,
	}
}

func (p Payload) values() map[string]string {
	receiptName := ""
	if p.Receipt != nil {
		receiptName = p.Receipt.Filename
	}
	return map[string]string{
		form.FieldFullName:       p.FullName,
		form.FieldMatricNumber:   p.MatricNumber,
		form.FieldLevel:          p.Level,
		form.FieldEmail:          p.Email,
		form.FieldPhoneNumber:    p.PhoneNumber,
		form.FieldTransactionRef: p.TransactionRef,
		form.FieldPaymentDate:    p.PaymentDate,
		form.FieldReceipt:        receiptName,
	}
}

// Check runs the preconditions of a submission, in order: field rules, receipt attached,
// at least one item, then receipt type and size.
func (p Payload) Check() error {
	values := p.values()
	fields := make(map[string]string)
	for _, f := range form.PaymentForm.Fields {
		if f.Kind == form.KindFile {
			continue
		}
		if valid, msg := form.Check(f, values[f.ID]); !valid {
			fields[f.ID] = msg
		}
	}
	if len(fields) > 0 {
		return &FormError{Fields: fields}
	}

	if p.Receipt == nil || len(p.Receipt.Content) == 0 {
		return payment.ErrReceiptMissing
	}
	if len(p.Items) == 0 {
		return payment.ErrNoItems
	}
	return payment.CheckReceipt(p.Receipt)
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken authenticates the admin utilities.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitPayment sends one multipart POST to /submit-payment. A failed precondition is returned as
// the error and nothing is sent; every remote outcome, transport failures included, is a Result.
// There is no retry and no timeout beyond ctx.
func (c *Client) SubmitPayment(ctx context.Context, p Payload) (Result, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}

	body, contentType, err := p.multipart()
	if err != nil {
		return nil, errors.Wrap(err, "encoding payment payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit-payment", body)
	if err != nil {
		return nil, errors.Wrap(err, "building payment request")
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, MsgSubmitFailed), nil
}

func (p Payload) multipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	items, err := json.Marshal(p.Items)
	if err != nil {
		return nil, "", err
	}
	fields := [][2]string{
		{"fullName", p.FullName},
		{"matricNumber", p.MatricNumber},
		{"level", p.Level},
		{"email", p.Email},
		{"phoneNumber", p.PhoneNumber},
		{"transactionRef", p.TransactionRef},
		{"paymentDate", p.PaymentDate},
		{"paymentItems", string(items)},
		{"totalAmount", strconv.Itoa(p.TotalAmount)},
	}
	for _, f := range fields {
		if err = mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="receipt"; filename=%q`, p.Receipt.Filename))
	h.Set("Content-Type", p.Receipt.ContentType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err = part.Write(p.Receipt.Content); err != nil {
		return nil, "", err
	}
	if err = mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) postJSON(ctx context.Context, path string, v interface{}, fallback string) Result {
	body, err := json.Marshal(v)
	if err != nil {
		return Err{Reason: fallback}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Err{Reason: fallback}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, fallback)
}

func (c *Client) do(req *http.Request, fallback string) Result {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Err{Reason: MsgNetworkError}
	}
	defer resp.Body.Close()

	var r response
	if err = json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Err{Reason: fallback}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		r.Success = false
	}
	return r.result(fallback)
}
