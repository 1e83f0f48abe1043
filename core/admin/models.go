package admin

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/uiaee/portal/core"
)

// Roles
const (
	RoleSuperAdmin  = "super_admin"
	RoleHOD         = "hod"
	RoleExamOfficer = "exam_officer"
)

var (
	AllRoles = []string{RoleSuperAdmin, RoleHOD, RoleExamOfficer}

	rolePriorities = map[string]int{
		RoleSuperAdmin:  30,
		RoleHOD:         20,
		RoleExamOfficer: 10,
	}

	Roles = []Role{
		{Name: "Exam Officer", Value: RoleExamOfficer},
		{Name: "Head of Department", Value: RoleHOD},
		{Name: "Super Admin", Value: RoleSuperAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Admin struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// HasRole reports whether the admin's role is at least as privileged as role.
func (a *Admin) HasRole(role string) bool {
	return RolePriority(a.Role) >= RolePriority(role)
}

func (a Admin) Person() core.Person {
	return core.Person{ID: strconv.Itoa(a.ID), Username: a.Username}
}

// NewAdmin contains information needed to create a new Admin.
type NewAdmin struct {
	Name            string `json:"name" validate:"required,max=200"`
	Username        string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Role            string `json:"role" validate:"required,oneof=super_admin hod exam_officer"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate() error {
	na.Name = core.CleanString(na.Name)
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Role = core.CleanString(na.Role, true /* lower */)
	return core.Validate.Struct(na)
}

type LoginCredentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (lc *LoginCredentials) Validate() error {
	lc.Username = core.CleanString(lc.Username, true /* lower */)
	return core.Validate.Struct(lc)
}
