package admin_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiaee/portal/core"
	. "github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/storage/database/inmem"
)

const strongPwd = "Gr@ssh0pper-25"

func setup(t *testing.T) (*Service, Repository, context.Context) {
	t.Helper()
	repo := inmem.NewAdminRepository(inmem.NewDB())
	return NewService(repo), repo, context.Background()
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		role     string
		required string
		want     bool
	}{
		{role: RoleSuperAdmin, required: RoleHOD, want: true},
		{role: RoleSuperAdmin, required: RoleSuperAdmin, want: true},
		{role: RoleHOD, required: RoleExamOfficer, want: true},
		{role: RoleHOD, required: RoleSuperAdmin, want: false},
		{role: RoleExamOfficer, required: RoleHOD, want: false},
		{role: "janitor", required: RoleExamOfficer, want: false},
	}
	for _, tc := range tests {
		a := Admin{Role: tc.role}
		assert.Equal(t, tc.want, a.HasRole(tc.required), "%s >= %s", tc.role, tc.required)
	}
	assert.Zero(t, RolePriority("janitor"))
	assert.Len(t, Roles, len(AllRoles))
}

func TestNewAdminValidate(t *testing.T) {
	tests := []struct {
		name      string
		data      NewAdmin
		wantField string
	}{
		{
			name: "valid",
			data: NewAdmin{Name: " Ola ", Username: " OLA_1 ", Role: "HOD", Password: strongPwd, PasswordConfirm: strongPwd},
		},
		{
			name:      "username with dash",
			data:      NewAdmin{Name: "Ola", Username: "ola-1", Role: RoleHOD, Password: strongPwd, PasswordConfirm: strongPwd},
			wantField: "username",
		},
		{
			name:      "unknown role",
			data:      NewAdmin{Name: "Ola", Username: "ola", Role: "janitor", Password: strongPwd, PasswordConfirm: strongPwd},
			wantField: "role",
		},
		{
			name:      "weak password",
			data:      NewAdmin{Name: "Ola", Username: "ola", Role: RoleHOD, Password: "password", PasswordConfirm: "password"},
			wantField: "password",
		},
		{
			name:      "confirmation differs",
			data:      NewAdmin{Name: "Ola", Username: "ola", Role: RoleHOD, Password: strongPwd, PasswordConfirm: "x"},
			wantField: "password_confirm",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			na := tc.data
			err := na.Validate()
			if tc.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "Ola", na.Name)
				assert.Equal(t, "ola_1", na.Username)
				assert.Equal(t, RoleHOD, na.Role)
				return
			}
			require.IsType(t, validator.ValidationErrors{}, err)
			assert.Contains(t, core.TranslateErrors(err.(validator.ValidationErrors)), tc.wantField)
		})
	}
}

func TestServiceCreateAndLogin(t *testing.T) {
	svc, repo, ctx := setup(t)

	na := NewAdmin{Name: "Ola", Username: "Ola", Role: RoleExamOfficer, Password: strongPwd, PasswordConfirm: strongPwd}
	require.NoError(t, na.Validate())
	a, err := svc.Create(ctx, na)
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.Equal(t, "ola", a.Username)

	_, err = svc.Create(ctx, na)
	require.IsType(t, &core.ValidationError{}, err)
	assert.Equal(t, ErrUsernameExists, err.(*core.ValidationError).Err)

	inactive := Admin{Name: "Gone", Username: "gone", Role: RoleHOD}
	require.NoError(t, inactive.SetPassword(strongPwd))
	_, err = repo.CreateAdmin(ctx, inactive)
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		pwd      string
		wantErr  error
	}{
		{name: "unknown username", username: "nobody", pwd: strongPwd, wantErr: ErrInvalidCredentials},
		{name: "wrong password", username: "ola", pwd: "nope", wantErr: ErrInvalidCredentials},
		{name: "inactive", username: "gone", pwd: strongPwd, wantErr: ErrInvalidCredentials},
		{name: "ok", username: " OLA ", pwd: strongPwd},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lc := LoginCredentials{Username: tc.username, Password: tc.pwd}
			require.NoError(t, lc.Validate())
			got, err := svc.Login(ctx, lc)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, a.ID, got.ID)
		})
	}
}

func TestServiceEnsureDefault(t *testing.T) {
	svc, _, ctx := setup(t)

	a, created, err := svc.EnsureDefault(ctx, strongPwd)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultUsername, a.Username)
	assert.Equal(t, RoleSuperAdmin, a.Role)

	again, created, err := svc.EnsureDefault(ctx, "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, again.ID)
	assert.NoError(t, again.CheckPassword(strongPwd))

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestServiceResetPassword(t *testing.T) {
	svc, _, ctx := setup(t)
	_, _, err := svc.EnsureDefault(ctx, strongPwd)
	require.NoError(t, err)

	assert.Equal(t, ErrNotFound, svc.ResetPassword(ctx, "nobody", strongPwd))

	err = svc.ResetPassword(ctx, "admin", "admin123")
	require.IsType(t, &core.ValidationError{}, err)

	require.NoError(t, svc.ResetPassword(ctx, " ADMIN ", "N3w-Secret#x"))
	a, err := svc.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, a.CheckPassword("N3w-Secret#x"))
	assert.Error(t, a.CheckPassword(strongPwd))
}
