package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/contact"
)

// contact.Contact maps onto the table as is: sqlx lower-cases field names.
const contactColumns = `id, name, email, subject, message, created_at AS createdat`

type contactRepository struct {
	db sqlx.ExtContext
}

func NewContactRepository(db sqlx.ExtContext) contact.Repository {
	return &contactRepository{db: db}
}

func (repo *contactRepository) CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	q := `INSERT INTO contacts (name, email, subject, message, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlx.GetContext(ctx, repo.db, &c.ID, q, c.Name, c.Email, c.Subject, c.Message, c.CreatedAt.UTC()); err != nil {
		return contact.Contact{}, errors.Wrap(err, "inserting contact")
	}
	return c, nil
}

func (repo *contactRepository) GetContact(ctx context.Context, id int) (contact.Contact, error) {
	var c contact.Contact
	if err := sqlx.GetContext(ctx, repo.db, &c, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id); err != nil {
		return contact.Contact{}, trapNoRowsErr(err, contact.ErrNotFound, "selecting contact")
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (repo *contactRepository) QueryContacts(ctx context.Context, paging core.Paging) ([]contact.Contact, int, error) {
	total, err := repo.CountContacts(ctx)
	if err != nil {
		return nil, 0, err
	}
	contacts := make([]contact.Contact, 0, paging.Limit())
	q := `SELECT ` + contactColumns + ` FROM contacts ORDER BY ` + newestFirst + ` LIMIT $1 OFFSET $2`
	if err = sqlx.SelectContext(ctx, repo.db, &contacts, q, paging.Limit(), paging.Offset()); err != nil {
		return nil, 0, errors.Wrap(err, "selecting contacts")
	}
	return utcContacts(contacts), total, nil
}

func (repo *contactRepository) AllContacts(ctx context.Context) ([]contact.Contact, error) {
	var contacts []contact.Contact
	q := `SELECT ` + contactColumns + ` FROM contacts ORDER BY ` + newestFirst
	if err := sqlx.SelectContext(ctx, repo.db, &contacts, q); err != nil {
		return nil, errors.Wrap(err, "selecting contacts")
	}
	return utcContacts(contacts), nil
}

func (repo *contactRepository) CountContacts(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, repo.db, &n, `SELECT COUNT(*) FROM contacts`)
	return n, errors.Wrap(err, "counting contacts")
}

func (repo *contactRepository) DeleteContact(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	return errors.Wrap(err, "deleting contact")
}

func utcContacts(contacts []contact.Contact) []contact.Contact {
	for i := range contacts {
		contacts[i].CreatedAt = contacts[i].CreatedAt.UTC()
	}
	return contacts
}
