package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core/admin"
)

const adminColumns = `id, name, username, password_hash, role, is_active, created_at`

type adminRow struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row adminRow) admin() admin.Admin {
	return admin.Admin{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

type adminRepository struct {
	db sqlx.ExtContext
}

func NewAdminRepository(db sqlx.ExtContext) admin.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	q := `INSERT INTO admins (name, username, password_hash, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := sqlx.GetContext(ctx, repo.db, &a.ID, q, a.Name, a.Username, a.PasswordHash, a.Role, a.IsActive, a.CreatedAt.UTC())
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return admin.Admin{}, admin.ErrUsernameExists
		}
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return a, nil
}

func (repo *adminRepository) getBy(ctx context.Context, column string, value interface{}) (admin.Admin, error) {
	var row adminRow
	q := `SELECT ` + adminColumns + ` FROM admins WHERE ` + column + ` = $1`
	if err := sqlx.GetContext(ctx, repo.db, &row, q, value); err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound, "selecting admin")
	}
	return row.admin(), nil
}

func (repo *adminRepository) GetAdminByID(ctx context.Context, id int) (admin.Admin, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *adminRepository) GetAdminByUsername(ctx context.Context, username string) (admin.Admin, error) {
	return repo.getBy(ctx, "username", username)
}

func (repo *adminRepository) QueryAllAdmins(ctx context.Context) ([]admin.Admin, error) {
	var rows []adminRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, `SELECT `+adminColumns+` FROM admins ORDER BY username`); err != nil {
		return nil, errors.Wrap(err, "selecting admins")
	}
	admins := make([]admin.Admin, 0, len(rows))
	for _, row := range rows {
		admins = append(admins, row.admin())
	}
	return admins, nil
}

func (repo *adminRepository) SetAdminPassword(ctx context.Context, id int, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE admins SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return errors.Wrap(err, "updating admin password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return admin.ErrNotFound
	}
	return nil
}
