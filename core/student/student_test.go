package student_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiaee/portal/core"
	. "github.com/uiaee/portal/core/student"
	"github.com/uiaee/portal/storage/database/inmem"
)

const strongPwd = "Gr@ssh0pper-25"

func newStudent() NewStudent {
	return NewStudent{
		Name:            "  Ada Obi ",
		MatricNumber:    " 210012",
		Level:           300,
		Email:           " Ada@UI.edu.ng ",
		Phone:           "0803 123 4567",
		Password:        strongPwd,
		PasswordConfirm: strongPwd,
	}
}

func TestNewStudentValidate(t *testing.T) {
	ns := newStudent()
	require.NoError(t, ns.Validate())
	assert.Equal(t, "Ada Obi", ns.Name)
	assert.Equal(t, "210012", ns.MatricNumber)
	assert.Equal(t, "ada@ui.edu.ng", ns.Email)
	assert.Equal(t, "08031234567", ns.Phone)
	assert.Equal(t, DefaultDepartment, ns.Department)

	tests := []struct {
		name      string
		mutate    func(ns *NewStudent)
		wantField string
		wantMsg   string
	}{
		{
			name:      "short matric",
			mutate:    func(ns *NewStudent) { ns.MatricNumber = "2100" },
			wantField: "matric_number",
			wantMsg:   "Matric number must be 6 digits",
		},
		{
			name:      "bad level",
			mutate:    func(ns *NewStudent) { ns.Level = 600 },
			wantField: "level",
			wantMsg:   "Please select your academic level",
		},
		{
			name:      "bad email",
			mutate:    func(ns *NewStudent) { ns.Email = "ada@ui" },
			wantField: "email",
			wantMsg:   "Please enter a valid email address",
		},
		{
			name:      "bad phone",
			mutate:    func(ns *NewStudent) { ns.Phone = "12345" },
			wantField: "phone",
			wantMsg:   "Please enter a valid Nigerian phone number",
		},
		{
			name:      "passwords differ",
			mutate:    func(ns *NewStudent) { ns.PasswordConfirm = strongPwd + "!" },
			wantField: "password_confirm",
		},
		{
			name: "password like the matric number",
			mutate: func(ns *NewStudent) {
				ns.Password, ns.PasswordConfirm = "#210012Ab", "#210012Ab"
			},
			wantField: "password",
			wantMsg:   "password cannot be similar to your other details",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ns := newStudent()
			tc.mutate(&ns)
			err := ns.Validate()
			require.IsType(t, validator.ValidationErrors{}, err)
			fields := core.TranslateErrors(err.(validator.ValidationErrors))
			require.Contains(t, fields, tc.wantField)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, fields[tc.wantField])
			}
		})
	}
}

func setup(t *testing.T) (*Service, context.Context) {
	t.Helper()
	return NewService(inmem.NewStudentRepository(inmem.NewDB())), context.Background()
}

func register(t *testing.T, svc *Service, ctx context.Context, mutate func(ns *NewStudent)) Student {
	t.Helper()
	ns := newStudent()
	if mutate != nil {
		mutate(&ns)
	}
	require.NoError(t, ns.Validate())
	s, err := svc.Register(ctx, ns)
	require.NoError(t, err)
	return s
}

func TestServiceRegister(t *testing.T) {
	svc, ctx := setup(t)

	s := register(t, svc, ctx, nil)
	assert.NotZero(t, s.ID)
	assert.False(t, s.IsActive)
	assert.NoError(t, s.CheckPassword(strongPwd))
	assert.Error(t, s.CheckPassword("nope"))

	tests := []struct {
		name      string
		mutate    func(ns *NewStudent)
		wantErr   error
		wantField string
	}{
		{
			name:      "matric taken",
			mutate:    func(ns *NewStudent) { ns.Email = "other@ui.edu.ng" },
			wantErr:   ErrMatricExists,
			wantField: "matric_number",
		},
		{
			name:      "email taken",
			mutate:    func(ns *NewStudent) { ns.MatricNumber = "210013" },
			wantErr:   ErrEmailExists,
			wantField: "email",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ns := newStudent()
			tc.mutate(&ns)
			require.NoError(t, ns.Validate())
			_, err := svc.Register(ctx, ns)
			require.IsType(t, &core.ValidationError{}, err)
			vErr := err.(*core.ValidationError)
			assert.Equal(t, tc.wantErr, errors.Cause(vErr.Err))
			assert.Equal(t, tc.wantField, vErr.Fields[0].Field)
		})
	}
}

func TestServiceLogin(t *testing.T) {
	svc, ctx := setup(t)
	s := register(t, svc, ctx, nil)

	login := func(matric, pwd string) (Student, error) {
		lc := LoginCredentials{MatricNumber: matric, Password: pwd}
		require.NoError(t, lc.Validate())
		return svc.Login(ctx, lc)
	}

	_, err := login("999999", strongPwd)
	assert.Equal(t, ErrInvalidCredentials, err)

	// the password is checked before the account status
	_, err = login("210012", "wrong")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = login("210012", strongPwd)
	assert.Equal(t, ErrInactive, err)

	_, err = svc.ToggleStatus(ctx, ToggleStatus{ID: s.ID})
	require.NoError(t, err)
	got, err := login(" 210012 ", strongPwd)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, core.Person{ID: "210012", Username: "Ada Obi", Email: "ada@ui.edu.ng"}, got.Person())
}

func TestServiceToggleStatus(t *testing.T) {
	svc, ctx := setup(t)
	s := register(t, svc, ctx, nil)
	yes, no := true, false

	tests := []struct {
		name       string
		data       ToggleStatus
		wantActive bool
		wantErr    error
	}{
		{name: "flip on", data: ToggleStatus{ID: s.ID}, wantActive: true},
		{name: "flip off", data: ToggleStatus{ID: s.ID}, wantActive: false},
		{name: "explicit on", data: ToggleStatus{ID: s.ID, IsActive: &yes}, wantActive: true},
		{name: "explicit on again", data: ToggleStatus{ID: s.ID, IsActive: &yes}, wantActive: true},
		{name: "explicit off", data: ToggleStatus{ID: s.ID, IsActive: &no}, wantActive: false},
		{name: "unknown", data: ToggleStatus{ID: 404}, wantErr: ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.ToggleStatus(ctx, tc.data)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantActive, got.IsActive)
		})
	}

	assert.Error(t, ToggleStatus{}.Validate())
	assert.Equal(t, "approved", StatusText(true))
	assert.Equal(t, "rejected", StatusText(false))
}

func TestServiceList(t *testing.T) {
	svc, ctx := setup(t)
	ada := register(t, svc, ctx, nil)
	register(t, svc, ctx, func(ns *NewStudent) {
		ns.Name, ns.MatricNumber, ns.Email = "Bola Ade", "210013", "bola@ui.edu.ng"
	})
	_, err := svc.ToggleStatus(ctx, ToggleStatus{ID: ada.ID})
	require.NoError(t, err)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := svc.List(ctx, QueryFilter{}, core.Paging{})
	require.NoError(t, err)
	require.Len(t, page.Students, 2)
	assert.Equal(t, "210013", page.Students[0].MatricNumber, "newest first")
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)

	page, err = svc.List(ctx, QueryFilter{Search: " BOLA "}, core.Paging{})
	require.NoError(t, err)
	require.Len(t, page.Students, 1)
	assert.Equal(t, "Bola Ade", page.Students[0].Name)

	active := true
	page, err = svc.List(ctx, QueryFilter{IsActive: &active}, core.Paging{})
	require.NoError(t, err)
	require.Len(t, page.Students, 1)
	assert.Equal(t, ada.ID, page.Students[0].ID)

	page, err = svc.List(ctx, QueryFilter{Search: "nobody"}, core.Paging{})
	require.NoError(t, err)
	assert.NotNil(t, page.Students)
	assert.Empty(t, page.Students)

	got, err := svc.GetByMatric(ctx, " 210012 ")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)
	_, err = svc.GetByID(ctx, 404)
	assert.Equal(t, ErrNotFound, err)
}
