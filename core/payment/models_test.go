package payment_test

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiaee/portal/core"
	. "github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/testutil"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "want a *core.ValidationError, got %v", err)
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestValidateItems(t *testing.T) {
	dues := PaymentItem{Name: "Departmental Dues", Amount: 5000}
	supervision := PaymentItem{Name: "Project Supervision", Amount: 10000}

	tests := []struct {
		name      string
		level     int
		items     []PaymentItem
		total     int
		wantField string
		wantMsg   string
	}{
		{name: "no items", total: 0, wantField: "paymentItems", wantMsg: ErrNoItems.Error()},
		{
			name: "blank name", items: []PaymentItem{{Name: " ", Amount: 100}}, total: 100,
			wantField: "paymentItems", wantMsg: "every payment item needs a name and a positive amount",
		},
		{
			name: "zero amount", items: []PaymentItem{{Name: "Dues", Amount: 0}}, total: 0,
			wantField: "paymentItems", wantMsg: "every payment item needs a name and a positive amount",
		},
		{
			name: "gated item", level: 400, items: []PaymentItem{dues, supervision}, total: 15000,
			wantField: "paymentItems", wantMsg: "Project Supervision is not available for 400 level",
		},
		{
			name: "total mismatch", level: 100, items: []PaymentItem{dues}, total: 9000,
			wantField: "totalAmount", wantMsg: "total amount 9000 does not match the selected items (5000)",
		},
		{
			name: "catalog item underpriced", level: 500, items: []PaymentItem{{Name: "Project Supervision", Amount: 1}}, total: 1,
			wantField: "paymentItems", wantMsg: "Project Supervision costs 10000 at 500 level, not 1",
		},
		{
			name: "exam fee priced for another level", level: 400, items: []PaymentItem{{Name: "examination fee", Amount: 3000}}, total: 3000,
			wantField: "paymentItems", wantMsg: "Examination Fee costs 4000 at 400 level, not 3000",
		},
		{name: "ok", level: 500, items: []PaymentItem{dues, supervision}, total: 15000},
		{name: "exam fee for level", level: 500, items: []PaymentItem{{Name: "Examination Fee", Amount: 5000}}, total: 5000},
		{name: "unknown items are priced as sent", level: 200, items: []PaymentItem{{Name: "Lab coat", Amount: 2000}}, total: 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(DefaultCatalog, tt.level, tt.items, tt.total)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, map[string]string{tt.wantField: tt.wantMsg}, fieldErrors(t, err))
		})
	}
}

func validPayment(t *testing.T) NewPayment {
	items, err := json.Marshal([]PaymentItem{
		{Name: "Departmental Dues", Amount: 5000},
		{Name: "Examination Fee", Amount: 3000},
	})
	require.NoError(t, err)
	return NewPayment{
		FullName:     "  Ada   Obi ",
		MatricNumber: " 210012 ",
		Level:        "200",
		Email:        "Ada@UI.edu.ng",
		PhoneNumber:  "0803 123 4567",
		PaymentDate:  "2025-01-15",
		PaymentItems: string(items),
		TotalAmount:  8000,
		Receipt:      &Receipt{Filename: "receipt.png", Content: testutil.PNGReceipt(t)},
	}
}

func TestNewPayment_Validate(t *testing.T) {
	t.Run("cleans a valid submission", func(t *testing.T) {
		np := validPayment(t)
		require.NoError(t, np.Validate(DefaultCatalog))
		assert.Equal(t, "Ada   Obi", np.FullName)
		assert.Equal(t, "210012", np.MatricNumber)
		assert.Equal(t, "ada@ui.edu.ng", np.Email)
		assert.Equal(t, "08031234567", np.PhoneNumber)
		assert.Equal(t, 200, np.LevelInt())
		assert.Len(t, np.Items, 2)
	})

	tests := []struct {
		name      string
		mutate    func(np *NewPayment)
		wantField string
	}{
		{name: "bad matric", mutate: func(np *NewPayment) { np.MatricNumber = "21001" }, wantField: "matricNumber"},
		{name: "bad level", mutate: func(np *NewPayment) { np.Level = "600" }, wantField: "level"},
		{name: "bad phone", mutate: func(np *NewPayment) { np.PhoneNumber = "12345" }, wantField: "phoneNumber"},
		{name: "bad date", mutate: func(np *NewPayment) { np.PaymentDate = "15/01/2025" }, wantField: "paymentDate"},
		{name: "items not json", mutate: func(np *NewPayment) { np.PaymentItems = "dues" }, wantField: "paymentItems"},
		{name: "total mismatch", mutate: func(np *NewPayment) { np.TotalAmount = 9000 }, wantField: "totalAmount"},
		{name: "no receipt", mutate: func(np *NewPayment) { np.Receipt = nil }, wantField: "receipt"},
		{
			name:      "receipt not an image",
			mutate:    func(np *NewPayment) { np.Receipt = &Receipt{Filename: "r.png", Content: []byte("hello")} },
			wantField: "receipt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := validPayment(t)
			tt.mutate(&np)
			err := np.Validate(DefaultCatalog)
			require.Error(t, err)
			assert.True(t, IsValidationErr(err))

			switch e := errors.Cause(err).(type) {
			case *core.ValidationError:
				assert.Equal(t, tt.wantField, e.Fields[0].Field)
			case validator.ValidationErrors:
				assert.Equal(t, tt.wantField, e[0].Field())
			}
		})
	}
}

func TestUpdatePayment_Validate(t *testing.T) {
	ref := "  TRX-1 "
	up := UpdatePayment{Email: " A@B.COM ", PhoneNumber: "0803 123 4567", TransactionRef: &ref, Status: StatusApproved}
	require.NoError(t, up.Validate())
	assert.Equal(t, "a@b.com", up.Email)
	assert.Equal(t, "08031234567", up.PhoneNumber)
	assert.Equal(t, "TRX-1", *up.TransactionRef)

	assert.Error(t, (&UpdatePayment{Status: "lol"}).Validate())
	assert.Error(t, (&UpdatePayment{Level: 250}).Validate())
	assert.Error(t, UpdateStatus{}.Validate())
	assert.NoError(t, UpdateStatus{Status: StatusRejected}.Validate())
}

func TestQueryFilter_Clean(t *testing.T) {
	qf := QueryFilter{Status: "lol", Search: "  ada  "}
	qf.Clean()
	assert.Equal(t, QueryFilter{Search: "ada"}, qf)

	qf = QueryFilter{Status: StatusPending}
	qf.Clean()
	assert.Equal(t, StatusPending, qf.Status)
}
