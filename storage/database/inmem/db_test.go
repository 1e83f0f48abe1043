package inmem_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/contact"
	"github.com/uiaee/portal/storage/database/inmem"
)

func TestDB_Reset(t *testing.T) {
	ctx := context.Background()
	db := inmem.NewDB()
	adminRepo := inmem.NewAdminRepository(db)
	contactRepo := inmem.NewContactRepository(db)
	academicRepo := inmem.NewAcademicRepository(db)

	a, err := adminRepo.CreateAdmin(ctx, admin.Admin{Username: "ola", Role: admin.RoleHOD})
	require.NoError(t, err)
	_, err = contactRepo.CreateContact(ctx, contact.Contact{Name: "Ada"})
	require.NoError(t, err)
	_, err = academicRepo.CreateSession(ctx, academic.Session{Name: "2024/2025", IsCurrent: true})
	require.NoError(t, err)

	_, err = adminRepo.CreateAdmin(ctx, admin.Admin{Username: "ola", Role: admin.RoleHOD})
	assert.Equal(t, admin.ErrUsernameExists, err)

	db.Reset()

	// repositories built before the reset see the emptied tables
	_, err = adminRepo.GetAdminByID(ctx, a.ID)
	assert.Equal(t, admin.ErrNotFound, err)
	n, err := contactRepo.CountContacts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	sessions, err := academicRepo.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	again, err := adminRepo.CreateAdmin(ctx, admin.Admin{Username: "ola", Role: admin.RoleHOD})
	require.NoError(t, err)
	assert.Equal(t, 1, again.ID)
}
