package inmem

import (
	"context"
	"sort"

	"github.com/uiaee/portal/core/admin"
)

type adminRepository struct {
	db *adminTable
}

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{db: db.admin}
}

func (repo *adminRepository) CreateAdmin(_ context.Context, a admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.rows {
		if other.Username == a.Username {
			return admin.Admin{}, admin.ErrUsernameExists
		}
	}
	a.ID = repo.db.nextPK()
	repo.db.rows[a.ID] = &a
	return a, nil
}

func (repo *adminRepository) GetAdminByID(_ context.Context, id int) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.rows[id]; ok {
		return *a, nil
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) GetAdminByUsername(_ context.Context, username string) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.rows {
		if a.Username == username {
			return *a, nil
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) QueryAllAdmins(_ context.Context) ([]admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	admins := make([]admin.Admin, 0, len(repo.db.rows))
	for _, a := range repo.db.rows {
		admins = append(admins, *a)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Username < admins[j].Username })
	return admins, nil
}

func (repo *adminRepository) SetAdminPassword(_ context.Context, id int, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.rows[id]
	if !ok {
		return admin.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}
