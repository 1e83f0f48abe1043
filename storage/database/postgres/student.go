package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/student"
)

const studentColumns = `id, name, matric_number, level, department, email, phone, password_hash, is_active, created_at`

type studentRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	MatricNumber string      `db:"matric_number"`
	Level        int         `db:"level"`
	Department   null.String `db:"department"`
	Email        null.String `db:"email"`
	Phone        null.String `db:"phone"`
	PasswordHash []byte      `db:"password_hash"`
	IsActive     bool        `db:"is_active"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:           row.ID,
		Name:         row.Name,
		MatricNumber: row.MatricNumber,
		Level:        row.Level,
		Department:   row.Department.String,
		Email:        row.Email.String,
		Phone:        row.Phone.String,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

type studentRepository struct {
	db sqlx.ExtContext
}

func NewStudentRepository(db sqlx.ExtContext) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckUniqueness(ctx context.Context, matric, email string) error {
	var taken struct {
		Matric bool `db:"matric"`
		Email  bool `db:"email"`
	}
	err := sqlx.GetContext(ctx, repo.db, &taken, `SELECT
		EXISTS (SELECT 1 FROM students WHERE matric_number = $1) AS matric,
		EXISTS (SELECT 1 FROM students WHERE $2 <> '' AND email = $2) AS email`, matric, email)
	switch {
	case err != nil:
		return errors.Wrap(err, "checking student uniqueness")
	case taken.Matric:
		return student.ErrMatricExists
	case taken.Email:
		return student.ErrEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO students (name, matric_number, level, department, email, phone, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := sqlx.GetContext(ctx, repo.db, &s.ID, q,
		s.Name, s.MatricNumber, s.Level,
		null.NewString(s.Department, s.Department != ""),
		null.NewString(s.Email, s.Email != ""),
		null.NewString(s.Phone, s.Phone != ""),
		s.PasswordHash, s.IsActive, s.CreatedAt.UTC())
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			if constraint == "students_email_key" {
				return student.Student{}, student.ErrEmailExists
			}
			return student.Student{}, student.ErrMatricExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) getBy(ctx context.Context, column string, value interface{}) (student.Student, error) {
	var row studentRow
	q := `SELECT ` + studentColumns + ` FROM students WHERE ` + column + ` = $1`
	if err := sqlx.GetContext(ctx, repo.db, &row, q, value); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "selecting student")
	}
	return row.student(), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *studentRepository) GetStudentByMatric(ctx context.Context, matric string) (student.Student, error) {
	return repo.getBy(ctx, "matric_number", matric)
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	paging core.Paging,
) ([]student.Student, int, error) {
	where := ` WHERE ($1 = '' OR name ILIKE $2 OR matric_number ILIKE $2 OR email ILIKE $2)
		AND ($3::boolean IS NULL OR is_active = $3)`
	args := []interface{}{filter.Search, likePattern(filter.Search), null.BoolFromPtr(filter.IsActive)}

	var total int
	if err := sqlx.GetContext(ctx, repo.db, &total, `SELECT COUNT(*) FROM students`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}

	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM students` + where + ` ORDER BY ` + newestFirst + ` LIMIT $4 OFFSET $5`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, append(args, paging.Limit(), paging.Offset())...); err != nil {
		return nil, 0, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, total, nil
}

func (repo *studentRepository) CountStudents(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, repo.db, &n, `SELECT COUNT(*) FROM students`)
	return n, errors.Wrap(err, "counting students")
}

func (repo *studentRepository) SetStudentActive(ctx context.Context, id int, isActive bool) (student.Student, error) {
	var row studentRow
	q := `UPDATE students SET is_active = $2 WHERE id = $1 RETURNING ` + studentColumns
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id, isActive); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "updating student status")
	}
	return row.student(), nil
}
