package payment

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
)

var nowFunc = time.Now // mockable

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type Payment struct {
	ID              int           `json:"id"`
	FullName        string        `json:"full_name"`
	MatricNumber    string        `json:"matric_number"`
	Level           int           `json:"level"`
	Email           string        `json:"email"`
	PhoneNumber     string        `json:"phone_number"`
	TransactionRef  string        `json:"transaction_ref"`
	PaymentDate     string        `json:"payment_date"` // YYYY-MM-DD
	ReceiptFilename string        `json:"receipt_filename"`
	Items           []PaymentItem `json:"payment_items"`
	TotalAmount     int           `json:"total_amount"`
	Status          Status        `json:"status"`
	CreatedAt       time.Time     `json:"created_at"` // UTC
	UpdatedAt       time.Time     `json:"updated_at"` // UTC
}

func (p Payment) HasReceipt() bool { return p.ReceiptFilename != "" }

// NewPayment is the multipart submission of the payment form.
type NewPayment struct {
	FullName       string `form:"fullName" validate:"required,trimmin=2"`
	MatricNumber   string `form:"matricNumber" validate:"required,matric"`
	Level          string `form:"level" validate:"required,level"`
	Email          string `form:"email" validate:"required,looseemail"`
	PhoneNumber    string `form:"phoneNumber" validate:"required,ngphone"`
	TransactionRef string `form:"transactionRef" validate:"omitempty,max=100"`
	PaymentDate    string `form:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	PaymentItems   string `form:"paymentItems" validate:"required"`
	TotalAmount    int    `form:"totalAmount" validate:"gt=0"`

	Receipt *Receipt      `form:"-" validate:"-"`
	Items   []PaymentItem `form:"-" validate:"-"`
}

// Validate cleans the submission, runs the shared field rules, decodes and checks the items
// against the catalog, then checks the receipt.
func (np *NewPayment) Validate(catalog Catalog) error {
	np.FullName = core.CleanString(np.FullName)
	np.MatricNumber = core.CleanString(np.MatricNumber)
	np.Level = core.CleanString(np.Level)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.PhoneNumber = core.StripSpaces(np.PhoneNumber)
	np.TransactionRef = core.CleanString(np.TransactionRef)
	np.PaymentDate = core.CleanString(np.PaymentDate)

	if err := core.Validate.Struct(np); err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(np.PaymentItems), &np.Items); err != nil {
		return core.NewValidationError(
			errors.New("invalid payment items"),
			core.FieldError{Field: "paymentItems", Error: "payment items must be a JSON list of {name, amount}"},
		)
	}
	if err := ValidateItems(catalog, np.LevelInt(), np.Items, np.TotalAmount); err != nil {
		return err
	}

	if err := CheckReceipt(np.Receipt); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "receipt", Error: err.Error()})
	}
	return nil
}

func (np *NewPayment) LevelInt() int {
	level, _ := strconv.Atoi(np.Level)
	return level
}

// ValidateItems checks a submitted selection: non-empty, positive amounts, eligible for level,
// priced as the catalog prices them for level, and total equal to the sum of the items.
// Items the catalog does not know are taken at the amount sent.
func ValidateItems(catalog Catalog, level int, items []PaymentItem, total int) error {
	fieldErr := func(field string, err error) error {
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}

	if len(items) == 0 {
		return fieldErr("paymentItems", ErrNoItems)
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" || it.Amount <= 0 {
			return fieldErr("paymentItems", errors.New("every payment item needs a name and a positive amount"))
		}
		ci, ok := catalog.ItemByName(it.Name)
		if !ok {
			continue
		}
		if !ci.Eligible(level) {
			return fieldErr("paymentItems", errors.Errorf("%s is not available for %d level", ci.Name, level))
		}
		if want := catalog.Amount(ci, level); it.Amount != want {
			return fieldErr("paymentItems", errors.Errorf("%s costs %d at %d level, not %d", ci.Name, want, level, it.Amount))
		}
	}
	if sum := SumItems(items); sum != total {
		return fieldErr("totalAmount", errors.Errorf("total amount %d does not match the selected items (%d)", total, sum))
	}
	return nil
}

// UpdatePayment defines what an admin may change on an existing Payment.
type UpdatePayment struct {
	FullName       string  `json:"full_name" validate:"omitempty,trimmin=2"`
	Email          string  `json:"email" validate:"omitempty,looseemail"`
	PhoneNumber    string  `json:"phone_number" validate:"omitempty,ngphone"`
	Level          int     `json:"level" validate:"omitempty,level"`
	TransactionRef *string `json:"transaction_ref" validate:"omitempty,max=100"`
	PaymentDate    *string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	TotalAmount    int     `json:"total_amount" validate:"omitempty,gt=0"`
	Status         Status  `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

func (up *UpdatePayment) Validate() error {
	up.FullName = core.CleanString(up.FullName)
	up.Email = core.CleanString(up.Email, true /* lower */)
	up.PhoneNumber = core.StripSpaces(up.PhoneNumber)
	if up.TransactionRef != nil {
		ref := core.CleanString(*up.TransactionRef)
		up.TransactionRef = &ref
	}
	if up.PaymentDate != nil && core.CleanString(*up.PaymentDate) == "" {
		up.PaymentDate = nil
	}
	return core.Validate.Struct(up)
}

func (up UpdatePayment) apply(p Payment) Payment {
	if up.FullName != "" {
		p.FullName = up.FullName
	}
	if up.Email != "" {
		p.Email = up.Email
	}
	if up.PhoneNumber != "" {
		p.PhoneNumber = up.PhoneNumber
	}
	if up.Level != 0 {
		p.Level = up.Level
	}
	if up.TransactionRef != nil {
		p.TransactionRef = *up.TransactionRef
	}
	if up.PaymentDate != nil {
		p.PaymentDate = core.CleanString(*up.PaymentDate)
	}
	if up.TotalAmount != 0 {
		p.TotalAmount = up.TotalAmount
	}
	if up.Status != "" {
		p.Status = up.Status
	}
	return p
}

type UpdateStatus struct {
	Status Status `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (us UpdateStatus) Validate() error { return core.Validate.Struct(us) }

type QueryFilter struct {
	Status Status `query:"status"`
	Search string `query:"search"` // matches name, matric number or email
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if !qf.Status.Valid() {
		qf.Status = ""
	}
}

type (
	LevelStat struct {
		Level       int `json:"level"`
		Count       int `json:"count"`
		TotalAmount int `json:"total_amount"`
	}

	StatusStat struct {
		Status Status `json:"status"`
		Count  int    `json:"count"`
	}

	MonthStat struct {
		Month       string `json:"month"` // YYYY-MM
		Count       int    `json:"count"`
		TotalAmount int    `json:"total_amount"`
	}

	Stats struct {
		Count          int          `json:"count"`
		TotalAmount    int          `json:"total_amount"`
		ApprovedAmount int          `json:"approved_amount"`
		ByLevel        []LevelStat  `json:"by_level"`
		ByStatus       []StatusStat `json:"by_status"`
		ByMonth        []MonthStat  `json:"by_month"`
	}
)

// IsValidationErr reports whether err is a field-level validation failure.
func IsValidationErr(err error) bool {
	switch errors.Cause(err).(type) {
	case validator.ValidationErrors, *core.ValidationError:
		return true
	}
	return false
}
