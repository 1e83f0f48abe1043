package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(t *testing.T, d Descriptor, id string) Field {
	f, err := d.Field(id)
	require.NoError(t, err)
	return f
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		desc      Descriptor
		id        string
		value     string
		wantValid bool
		wantMsg   string
	}{
		{name: "full name: empty", desc: PaymentForm, id: FieldFullName, value: "", wantMsg: "Full name must be at least 2 characters"},
		{name: "full name: 1 char", desc: PaymentForm, id: FieldFullName, value: " A ", wantMsg: "Full name must be at least 2 characters"},
		{name: "full name: ok", desc: PaymentForm, id: FieldFullName, value: "Ade", wantValid: true},

		{name: "matric: 5 digits", desc: PaymentForm, id: FieldMatricNumber, value: "12345", wantMsg: "Matric number must be 6 digits"},
		{name: "matric: 7 digits", desc: PaymentForm, id: FieldMatricNumber, value: "1234567", wantMsg: "Matric number must be 6 digits"},
		{name: "matric: letters", desc: PaymentForm, id: FieldMatricNumber, value: "12a456", wantMsg: "Matric number must be 6 digits"},
		{name: "matric: inner space", desc: PaymentForm, id: FieldMatricNumber, value: "123 456", wantMsg: "Matric number must be 6 digits"},
		{name: "matric: ok", desc: PaymentForm, id: FieldMatricNumber, value: "123456", wantValid: true},
		{name: "matric: ok trimmed", desc: PaymentForm, id: FieldMatricNumber, value: "  234567 ", wantValid: true},

		{name: "email: no tld", desc: PaymentForm, id: FieldEmail, value: "a@b", wantMsg: "Please enter a valid email address"},
		{name: "email: spaces", desc: PaymentForm, id: FieldEmail, value: "a b@c.com", wantMsg: "Please enter a valid email address"},
		{name: "email: ok", desc: PaymentForm, id: FieldEmail, value: "a@b.com", wantValid: true},

		{name: "phone: local", desc: PaymentForm, id: FieldPhoneNumber, value: "08012345678", wantValid: true},
		{name: "phone: intl", desc: PaymentForm, id: FieldPhoneNumber, value: "+2349012345678", wantValid: true},
		{name: "phone: spaced", desc: PaymentForm, id: FieldPhoneNumber, value: "0701 234 5678", wantValid: true},
		{name: "phone: bad network digit", desc: PaymentForm, id: FieldPhoneNumber, value: "06012345678", wantMsg: "Please enter a valid Nigerian phone number"},
		{name: "phone: too short", desc: PaymentForm, id: FieldPhoneNumber, value: "0801234567", wantMsg: "Please enter a valid Nigerian phone number"},
		{name: "phone: dashes", desc: PaymentForm, id: FieldPhoneNumber, value: "0801-234-5678", wantMsg: "Please enter a valid Nigerian phone number"},

		{name: "level: empty", desc: PaymentForm, id: FieldLevel, value: "", wantMsg: "Please select your academic level"},
		{name: "level: unknown", desc: PaymentForm, id: FieldLevel, value: "600", wantMsg: "Please select your academic level"},
		{name: "level: ok", desc: PaymentForm, id: FieldLevel, value: "300", wantValid: true},

		{name: "transaction ref: optional", desc: PaymentForm, id: FieldTransactionRef, value: "", wantValid: true},
		{name: "payment date: optional", desc: PaymentForm, id: FieldPaymentDate, value: "", wantValid: true},
		{name: "payment date: bad", desc: PaymentForm, id: FieldPaymentDate, value: "2024-13-01", wantMsg: "Please enter a valid payment date"},
		{name: "payment date: ok", desc: PaymentForm, id: FieldPaymentDate, value: "2024-05-01", wantValid: true},

		{name: "receipt: missing", desc: PaymentForm, id: FieldReceipt, value: "", wantMsg: "Please upload your payment receipt"},
		{name: "receipt: ok", desc: PaymentForm, id: FieldReceipt, value: "receipt.pdf", wantValid: true},

		{name: "contact name: short", desc: ContactForm, id: FieldName, value: "A", wantMsg: "Name must be at least 2 characters long"},
		{name: "contact subject: empty", desc: ContactForm, id: FieldSubject, value: " ", wantMsg: "Please select a subject"},
		{name: "contact message: short", desc: ContactForm, id: FieldMessage, value: "too short", wantMsg: "Message must be at least 10 characters long"},
		{name: "contact message: ok", desc: ContactForm, id: FieldMessage, value: "When is the next exam?", wantValid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := Check(field(t, tt.desc, tt.id), tt.value)
			assert.Equal(t, tt.wantValid, valid)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestDescriptor_Field_missing(t *testing.T) {
	_, err := PaymentForm.Field("receiptImage")

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "payment", mfe.Form)
	assert.Equal(t, "receiptImage", mfe.ID)
}

func TestCheckAll(t *testing.T) {
	values := map[string]string{FieldName: "Bola", FieldEmail: "bola@", FieldSubject: "admissions"}
	_, err := CheckAll(ContactForm, values)
	assert.IsType(t, &MissingFieldError{}, err)

	values[FieldMessage] = "hi"
	errs, err := CheckAll(ContactForm, values)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		FieldEmail:   "Please enter a valid email address",
		FieldMessage: "Message must be at least 10 characters long",
	}, errs)
}

func TestState_ShowError_replaces(t *testing.T) {
	s := NewState(ContactForm)

	s, err := s.ShowError(FieldName, "first")
	require.NoError(t, err)
	s, err = s.ShowError(FieldName, "second")
	require.NoError(t, err)

	assert.Equal(t, FieldState{Message: "second", Status: Invalid}, s.Fields[FieldName])
	assert.Equal(t, map[string]string{FieldName: "second"}, s.Errors())

	again, err := s.ShowError(FieldName, "second")
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestState_ClearError(t *testing.T) {
	s, _ := NewState(ContactForm).ShowError(FieldEmail, "bad")
	cleared, err := s.ClearError(FieldEmail)
	require.NoError(t, err)

	assert.Equal(t, FieldState{Status: Valid}, cleared.Fields[FieldEmail])
	assert.Equal(t, Invalid, s.Fields[FieldEmail].Status, "reducers must not mutate their input")

	_, err = s.ClearError("nope")
	assert.IsType(t, &MissingFieldError{}, err)
}

func TestReduce_inputClearsDecoration(t *testing.T) {
	s := NewState(ContactForm)
	s, _ = Reduce(ContactForm, s, Input{ID: FieldName, Value: "A"})
	s, _ = Reduce(ContactForm, s, Blur{ID: FieldName})
	require.Equal(t, Invalid, s.Fields[FieldName].Status)

	// still invalid as typed, but input never re-checks
	s, err := Reduce(ContactForm, s, Input{ID: FieldName, Value: "B"})
	require.NoError(t, err)
	assert.Equal(t, FieldState{Value: "B", Status: Pristine}, s.Fields[FieldName])
}

func TestForm_Submit_showsAllErrors(t *testing.T) {
	f := New(PaymentForm)
	require.NoError(t, f.Input(FieldFullName, "Ade Bola"))
	require.NoError(t, f.Input(FieldMatricNumber, "12345"))
	require.NoError(t, f.Input(FieldEmail, "ade@"))

	assert.False(t, f.Submit())

	st := f.State()
	assert.True(t, st.Validated)
	assert.Equal(t, map[string]string{
		FieldMatricNumber: "Matric number must be 6 digits",
		FieldLevel:        "Please select your academic level",
		FieldEmail:        "Please enter a valid email address",
		FieldPhoneNumber:  "Please enter a valid Nigerian phone number",
		FieldReceipt:      "Please upload your payment receipt",
	}, f.Errors())
	assert.Equal(t, Valid, st.Fields[FieldFullName].Status)
	assert.Equal(t, Valid, st.Fields[FieldTransactionRef].Status)

	view := f.Render()
	assert.Equal(t, []string{ClassValidated}, view.Classes)
	assert.Equal(t, "Matric number must be 6 digits", view.Fields[1].Feedback)
	assert.Equal(t, []string{ClassInvalid}, view.Fields[1].Classes)
	assert.Equal(t, view, f.Render())
}

func TestForm_Blur(t *testing.T) {
	f := New(PaymentForm)
	require.NoError(t, f.Input(FieldPhoneNumber, "0803 123 4567"))

	ok, err := f.Blur(FieldPhoneNumber)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.Errors())
	assert.False(t, f.State().Validated)

	_, err = f.Blur("phone")
	assert.IsType(t, &MissingFieldError{}, err)
}

func TestForm_Bind(t *testing.T) {
	f := New(ContactForm)
	err := f.Bind(map[string]string{FieldName: "Bola", FieldEmail: "b@ui.edu.ng", FieldSubject: "general"})

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, FieldMessage, mfe.ID)
	assert.Equal(t, "", f.Values()[FieldName], "nothing is bound when a field is missing")

	require.NoError(t, f.Bind(map[string]string{
		FieldName: "Bola", FieldEmail: "b@ui.edu.ng", FieldSubject: "general", FieldMessage: "I would like to visit the lab.",
	}))
	assert.True(t, f.Submit())

	f.Reset()
	assert.Equal(t, NewState(ContactForm), f.State())
}

func TestActiveSection(t *testing.T) {
	sections := []Section{
		{ID: "home", Top: 0, Height: 600},
		{ID: "about", Top: 600, Height: 400},
		{ID: "contact", Top: 1000, Height: 500},
	}
	tests := []struct {
		y    int
		want string
	}{
		{y: 0, want: "home"},
		{y: 450, want: "home"},
		{y: 500, want: "about"},
		{y: 899, want: "about"},
		{y: 900, want: "contact"},
		{y: 1400, want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActiveSection(sections, tt.y), "y=%d", tt.y)
	}
}

func TestScrollHelpers(t *testing.T) {
	assert.Equal(t, 520, ScrollTarget(600))
	assert.False(t, NavbarShadow(50))
	assert.True(t, NavbarShadow(51))
	assert.False(t, BackToTopVisible(300))
	assert.True(t, BackToTopVisible(301))
}

func TestBanner_Expired(t *testing.T) {
	now := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)

	ok := NewBanner(BannerSuccess, "saved", now)
	assert.False(t, ok.Expired(now.Add(4*time.Second)))
	assert.True(t, ok.Expired(now.Add(5*time.Second)))

	fail := NewBanner(BannerError, "network", now)
	assert.False(t, fail.Expired(now.Add(time.Hour)))
	assert.Equal(t, "alert alert-danger alert-dismissible", fail.Class())
}

func TestFormatPhone(t *testing.T) {
	tests := map[string]string{
		"08012345678":       "+2348012345678",
		"2348012345678":     "+2348012345678",
		"+234 801 234 5678": "+2348012345678",
		"8012345678":        "+2348012345678",
		"0801-234-5678":     "+2348012345678",
		"12345":             "12345",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPhone(in), in)
	}
}
