// Package contact stores the messages sent through the public contact form.
package contact

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
)

// SuccessMessage is returned to the sender once the message is stored.
const SuccessMessage = "Thank you for your message! We will get back to you soon."

var (
	ErrNotFound = core.NewNotFoundError("contact not found")

	nowFunc = time.Now // mockable
)

type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewContact mirrors form.ContactForm: the same tags run in the browser-side validator.
type NewContact struct {
	Name    string `json:"name" form:"name" validate:"required,trimmin=2,max=100"`
	Email   string `json:"email" form:"email" validate:"required,looseemail,max=120"`
	Subject string `json:"subject" form:"subject" validate:"required,notblank,max=200"`
	Message string `json:"message" form:"message" validate:"required,trimmin=10"`
}

func (nc *NewContact) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Message = core.CleanString(nc.Message)
	return core.Validate.Struct(nc)
}

type (
	Repository interface {
		CreateContact(ctx context.Context, c Contact) (Contact, error)
		GetContact(ctx context.Context, id int) (Contact, error)
		// QueryContacts returns one page of contacts, newest first, and the total count.
		QueryContacts(ctx context.Context, paging core.Paging) ([]Contact, int, error)
		AllContacts(ctx context.Context) ([]Contact, error)
		CountContacts(ctx context.Context) (int, error)
		DeleteContact(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}

	Page struct {
		Contacts []Contact `json:"contacts"`
		core.PageInfo
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewContact) (Contact, error) {
	return svc.repo.CreateContact(ctx, Contact{
		Name:      nc.Name,
		Email:     nc.Email,
		Subject:   nc.Subject,
		Message:   nc.Message,
		CreatedAt: nowFunc().UTC(),
	})
}

func (svc *Service) Get(ctx context.Context, id int) (Contact, error) {
	return svc.repo.GetContact(ctx, id)
}

// List pages contacts 20 at a time unless paging says otherwise.
func (svc *Service) List(ctx context.Context, paging core.Paging) (Page, error) {
	paging.Clean()
	contacts, total, err := svc.repo.QueryContacts(ctx, paging)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying contacts")
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	return Page{Contacts: contacts, PageInfo: core.NewPageInfo(paging, total)}, nil
}

func (svc *Service) Recent(ctx context.Context, n int) ([]Contact, error) {
	page, err := svc.List(ctx, core.Paging{Page: 1, PerPage: n})
	return page.Contacts, err
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountContacts(ctx)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetContact(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteContact(ctx, id)
}

func (svc *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	contacts, err := svc.repo.AllContacts(ctx)
	if err != nil {
		return errors.Wrap(err, "querying contacts")
	}
	return WriteCSV(w, contacts)
}

func WriteCSV(w io.Writer, contacts []Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Email", "Subject", "Message", "Created At"}); err != nil {
		return err
	}
	for _, c := range contacts {
		record := []string{
			strconv.Itoa(c.ID), c.Name, c.Email, c.Subject, c.Message, c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
