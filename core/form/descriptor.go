// Package form holds the typed form descriptors and the view-model reducers
// that validate, decorate and render the portal's forms.
package form

import "fmt"

type Kind string

const (
	KindText   Kind = "text"
	KindEmail  Kind = "email"
	KindPhone  Kind = "phone"
	KindSelect Kind = "select"
	KindFile   Kind = "file"
)

const requiredMessage = "This field is required"

// Field describes one input of a form.
// Tag is a validator tag run against non-empty values; Message is shown whenever the field fails.
type Field struct {
	ID       string
	Label    string
	Kind     Kind
	Required bool
	Tag      string
	Message  string
}

func (f Field) failMessage() string {
	if f.Message != "" {
		return f.Message
	}
	return requiredMessage
}

// Descriptor is the ordered schema of a form, shared by the validator and the renderer.
type Descriptor struct {
	Name   string
	Fields []Field
}

// MissingFieldError is returned whenever a form operation names a field the descriptor does not declare,
// or when bound values lack a declared field.
type MissingFieldError struct {
	Form string
	ID   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("form %q: missing field %q", e.Form, e.ID)
}

func (d Descriptor) Field(id string) (Field, error) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, nil
		}
	}
	return Field{}, &MissingFieldError{Form: d.Name, ID: id}
}

func (d Descriptor) IDs() []string {
	ids := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		ids = append(ids, f.ID)
	}
	return ids
}

// Field IDs of the payment form.
const (
	FieldFullName       = "fullName"
	FieldMatricNumber   = "matricNumber"
	FieldLevel          = "level"
	FieldEmail          = "email"
	FieldPhoneNumber    = "phoneNumber"
	FieldTransactionRef = "transactionRef"
	FieldPaymentDate    = "paymentDate"
	FieldReceipt        = "paymentReceipt"
)

// Field IDs of the contact form.
const (
	FieldName    = "name"
	FieldSubject = "subject"
	FieldMessage = "message"
)

var PaymentForm = Descriptor{
	Name: "payment",
	Fields: []Field{
		{
			ID: FieldFullName, Label: "Full Name", Kind: KindText, Required: true,
			Tag: "trimmin=2", Message: "Full name must be at least 2 characters",
		},
		{
			ID: FieldMatricNumber, Label: "Matric Number", Kind: KindText, Required: true,
			Tag: "matric", Message: "Matric number must be 6 digits",
		},
		{
			ID: FieldLevel, Label: "Level", Kind: KindSelect, Required: true,
			Tag: "level", Message: "Please select your academic level",
		},
		{
			ID: FieldEmail, Label: "Email Address", Kind: KindEmail, Required: true,
			Tag: "looseemail", Message: "Please enter a valid email address",
		},
		{
			ID: FieldPhoneNumber, Label: "Phone Number", Kind: KindPhone, Required: true,
			Tag: "ngphone", Message: "Please enter a valid Nigerian phone number",
		},
		{ID: FieldTransactionRef, Label: "Transaction Reference", Kind: KindText},
		{
			ID: FieldPaymentDate, Label: "Payment Date", Kind: KindText,
			Tag: "datetime=2006-01-02", Message: "Please enter a valid payment date",
		},
		{
			ID: FieldReceipt, Label: "Payment Receipt", Kind: KindFile, Required: true,
			Message: "Please upload your payment receipt",
		},
	},
}

var ContactForm = Descriptor{
	Name: "contact",
	Fields: []Field{
		{
			ID: FieldName, Label: "Name", Kind: KindText, Required: true,
			Tag: "trimmin=2", Message: "Name must be at least 2 characters long",
		},
		{
			ID: FieldEmail, Label: "Email", Kind: KindEmail, Required: true,
			Tag: "looseemail", Message: "Please enter a valid email address",
		},
		{
			ID: FieldSubject, Label: "Subject", Kind: KindSelect, Required: true,
			Tag: "notblank", Message: "Please select a subject",
		},
		{
			ID: FieldMessage, Label: "Message", Kind: KindText, Required: true,
			Tag: "trimmin=10", Message: "Message must be at least 10 characters long",
		},
	},
}
