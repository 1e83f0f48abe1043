package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("student not found")
	ErrMatricExists       = errors.New("a student with this matric number already exists")
	ErrEmailExists        = errors.New("a student with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid matric number or password.")
	ErrInactive           = errors.New("Your account is not yet approved by the admin.")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckUniqueness returns ErrMatricExists or ErrEmailExists when either is taken.
		CheckUniqueness(ctx context.Context, matric, email string) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByMatric(ctx context.Context, matric string) (Student, error)
		// QueryStudents returns one page of students, newest first, and the total matching the filter.
		QueryStudents(ctx context.Context, filter QueryFilter, paging core.Paging) ([]Student, int, error)
		CountStudents(ctx context.Context) (int, error)
		SetStudentActive(ctx context.Context, id int, isActive bool) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, matric, email string) error {
	if err := svc.repo.CheckUniqueness(ctx, matric, email); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrMatricExists:
			field = "matric_number"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Register creates an inactive account.
func (svc *Service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkUniqueness(ctx, ns.MatricNumber, ns.Email); err != nil {
		return Student{}, err
	}
	s := Student{
		Name:         ns.Name,
		MatricNumber: ns.MatricNumber,
		Level:        ns.Level,
		Department:   ns.Department,
		Email:        ns.Email,
		Phone:        ns.Phone,
		IsActive:     false,
		CreatedAt:    nowFunc().UTC(),
	}
	if err := s.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateStudent(ctx, s)
}

// Login authenticates by matric number. Inactive accounts are refused after the password check.
func (svc *Service) Login(ctx context.Context, lc LoginCredentials) (Student, error) {
	s, err := svc.repo.GetStudentByMatric(ctx, lc.MatricNumber)
	if err != nil {
		if core.IsNotFound(err) {
			return Student{}, ErrInvalidCredentials
		}
		return Student{}, err
	}
	if err = s.CheckPassword(lc.Password); err != nil {
		return Student{}, ErrInvalidCredentials
	}
	if !s.IsActive {
		return Student{}, ErrInactive
	}
	return s, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByMatric(ctx context.Context, matric string) (Student, error) {
	return svc.repo.GetStudentByMatric(ctx, core.CleanString(matric))
}

type Page struct {
	Students []Student `json:"students"`
	core.PageInfo
}

func (svc *Service) List(ctx context.Context, filter QueryFilter, paging core.Paging) (Page, error) {
	filter.Clean()
	paging.Clean()
	students, total, err := svc.repo.QueryStudents(ctx, filter, paging)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []Student{}
	}
	return Page{Students: students, PageInfo: core.NewPageInfo(paging, total)}, nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountStudents(ctx)
}

// ToggleStatus approves or rejects an account and returns the updated student.
func (svc *Service) ToggleStatus(ctx context.Context, ts ToggleStatus) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, ts.ID)
	if err != nil {
		return Student{}, err
	}
	active := !s.IsActive
	if ts.IsActive != nil {
		active = *ts.IsActive
	}
	return svc.repo.SetStudentActive(ctx, s.ID, active)
}

// StatusText is the past tense shown after a toggle.
func StatusText(isActive bool) string {
	if isActive {
		return "approved"
	}
	return "rejected"
}
