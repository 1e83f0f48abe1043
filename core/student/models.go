package student

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/uiaee/portal/core"
)

const DefaultDepartment = "Agricultural and Environmental Engineering"

type Student struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	MatricNumber string    `json:"matric_number"`
	Level        int       `json:"level"`
	Department   string    `json:"department"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash []byte    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

func (s Student) Person() core.Person {
	return core.Person{ID: s.MatricNumber, Username: s.Name, Email: s.Email}
}

// NewStudent is a self-registration. Accounts start inactive until an admin approves them.
type NewStudent struct {
	Name            string `json:"name" form:"name" validate:"required,trimmin=2,max=200"`
	MatricNumber    string `json:"matric_number" form:"matric_number" validate:"required,matric"`
	Level           int    `json:"level" form:"level" validate:"required,level"`
	Department      string `json:"department" form:"department" validate:"omitempty,max=100"`
	Email           string `json:"email" form:"email" validate:"required,looseemail,max=100"`
	Phone           string `json:"phone" form:"phone" validate:"omitempty,ngphone"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.MatricNumber = core.CleanString(ns.MatricNumber)
	ns.Department = core.CleanString(ns.Department)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.StripSpaces(ns.Phone)
	if ns.Department == "" {
		ns.Department = DefaultDepartment
	}
	return core.Validate.Struct(ns)
}

type LoginCredentials struct {
	MatricNumber string `json:"matric_number" form:"matric_number" validate:"required"`
	Password     string `json:"password" form:"password" validate:"required"`
}

func (lc *LoginCredentials) Validate() error {
	lc.MatricNumber = core.CleanString(lc.MatricNumber)
	return core.Validate.Struct(lc)
}

// ToggleStatus is the admin approve/reject switch. A nil IsActive flips the current status.
type ToggleStatus struct {
	ID       int   `json:"id" validate:"required"`
	IsActive *bool `json:"is_active"`
}

func (ts ToggleStatus) Validate() error { return core.Validate.Struct(ts) }

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
