package admin

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
)

const (
	DefaultUsername = "admin"
	DefaultName     = "System Administrator"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("admin not found")
	ErrUsernameExists     = errors.New("an admin with this username already exists")
	ErrInvalidCredentials = errors.New("Invalid username or password.")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateAdmin(ctx context.Context, a Admin) (Admin, error)
		GetAdminByID(ctx context.Context, id int) (Admin, error)
		GetAdminByUsername(ctx context.Context, username string) (Admin, error)
		QueryAllAdmins(ctx context.Context) ([]Admin, error)
		SetAdminPassword(ctx context.Context, id int, hash []byte) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAdmin) (Admin, error) {
	if _, err := svc.repo.GetAdminByUsername(ctx, na.Username); err == nil {
		return Admin{}, core.NewValidationError(
			ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()},
		)
	} else if !core.IsNotFound(err) {
		return Admin{}, err
	}

	a := Admin{
		Name:      na.Name,
		Username:  na.Username,
		Role:      na.Role,
		IsActive:  true,
		CreatedAt: nowFunc().UTC(),
	}
	if err := a.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAdmin(ctx, a)
}

// EnsureDefault creates the super admin account when it is missing.
func (svc *Service) EnsureDefault(ctx context.Context, pwd string) (Admin, bool, error) {
	a, err := svc.repo.GetAdminByUsername(ctx, DefaultUsername)
	if err == nil {
		return a, false, nil
	}
	if !core.IsNotFound(err) {
		return Admin{}, false, err
	}
	a = Admin{
		Name:      DefaultName,
		Username:  DefaultUsername,
		Role:      RoleSuperAdmin,
		IsActive:  true,
		CreatedAt: nowFunc().UTC(),
	}
	if err = a.SetPassword(pwd); err != nil {
		return Admin{}, false, errors.Wrap(err, "hashing password")
	}
	a, err = svc.repo.CreateAdmin(ctx, a)
	return a, err == nil, err
}

func (svc *Service) Login(ctx context.Context, lc LoginCredentials) (Admin, error) {
	a, err := svc.repo.GetAdminByUsername(ctx, lc.Username)
	if err != nil {
		if core.IsNotFound(err) {
			return Admin{}, ErrInvalidCredentials
		}
		return Admin{}, err
	}
	if !a.IsActive || a.CheckPassword(lc.Password) != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return a, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Admin, error) {
	return svc.repo.GetAdminByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (Admin, error) {
	return svc.repo.GetAdminByUsername(ctx, core.CleanString(username, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Admin, error) {
	return svc.repo.QueryAllAdmins(ctx)
}

func (svc *Service) ResetPassword(ctx context.Context, username, pwd string) error {
	a, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err = core.CheckPassword(pwd, a.Name, a.Username); err != nil {
		return err
	}
	if err = a.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetAdminPassword(ctx, a.ID, a.PasswordHash)
}
