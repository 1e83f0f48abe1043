package inmem

import (
	"context"
	"sort"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/contact"
)

type contactRepository struct {
	db *contactTable
}

func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db.contact}
}

func (repo *contactRepository) query() []contact.Contact {
	contacts := make([]contact.Contact, 0, len(repo.db.rows))
	for _, c := range repo.db.rows {
		contacts = append(contacts, *c)
	}
	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].CreatedAt.Equal(contacts[j].CreatedAt) {
			return contacts[i].ID > contacts[j].ID
		}
		return contacts[i].CreatedAt.After(contacts[j].CreatedAt)
	})
	return contacts
}

func (repo *contactRepository) CreateContact(_ context.Context, c contact.Contact) (contact.Contact, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.rows[c.ID] = &c
	return c, nil
}

func (repo *contactRepository) GetContact(_ context.Context, id int) (contact.Contact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.rows[id]; ok {
		return *c, nil
	}
	return contact.Contact{}, contact.ErrNotFound
}

func (repo *contactRepository) QueryContacts(_ context.Context, paging core.Paging) ([]contact.Contact, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	all := repo.query()
	start, end := pageBounds(len(all), paging.Offset(), paging.Limit())
	return all[start:end], len(all), nil
}

func (repo *contactRepository) AllContacts(_ context.Context) ([]contact.Contact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *contactRepository) CountContacts(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.rows), nil
}

func (repo *contactRepository) DeleteContact(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, id)
	return nil
}
